package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rxledger/internal/fingerprint"
	"rxledger/internal/http/middleware"
	"rxledger/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "DUPLICATE_RECORD", "NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// mapServiceError translates the registry's error kinds to HTTP responses.
// Every kind keeps its own code so callers can branch without string matching.
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return writeError(c, fiber.StatusForbidden, "UNAUTHORIZED", "party is not authorized for this operation")
	case errors.Is(err, service.ErrInvalidExpiry):
		return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_EXPIRY", "expiry must be strictly in the future")
	case errors.Is(err, service.ErrDuplicateRecord):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_RECORD", "prescription already registered for this fingerprint")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "prescription not found")
	case errors.Is(err, service.ErrExpired):
		return writeError(c, fiber.StatusGone, "EXPIRED", "prescription has expired")
	case errors.Is(err, service.ErrAlreadyFulfilled):
		return writeError(c, fiber.StatusConflict, "ALREADY_FULFILLED", "party has already fulfilled this prescription")
	case errors.Is(err, service.ErrIdentityRequired), errors.Is(err, service.ErrLocatorRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, fingerprint.ErrInvalid):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FINGERPRINT", "fingerprint must be 32 bytes of hex")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
