package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rxledger/internal/service"
)

type issueRequest struct {
	Issuer      string `json:"issuer"`
	Recipient   string `json:"recipient"`
	Fingerprint string `json:"fingerprint"`
	Locator     string `json:"locator"`
	// ExpiresAt is seconds since epoch.
	ExpiresAt int64 `json:"expires_at"`
}

type issueResponse struct {
	ID string `json:"id"`
}

// IssuePrescription registers a new prescription record.
func IssuePrescription(svc service.PrescriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req issueRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		id, err := svc.Issue(c.UserContext(), service.IssueInput{
			Issuer:      req.Issuer,
			Recipient:   req.Recipient,
			Fingerprint: req.Fingerprint,
			Locator:     req.Locator,
			ExpiresAt:   time.Unix(req.ExpiresAt, 0).UTC(),
		})
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(issueResponse{ID: id})
	}
}

type fulfillRequest struct {
	Dispenser string `json:"dispenser"`
}

// FulfillPrescription appends a fulfillment entry for the dispensing party.
func FulfillPrescription(svc service.PrescriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req fulfillRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		entry, err := svc.Fulfill(c.UserContext(), c.Params("id"), req.Dispenser)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// GetPrescription returns the full record including its fulfillment log.
func GetPrescription(svc service.PrescriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.GetDetails(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

type scanPayloadResponse struct {
	Payload string `json:"payload"`
}

// ScanPayload returns the string the issuing side encodes into the QR code.
func ScanPayload(svc service.PrescriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, err := svc.ScanPayload(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(scanPayloadResponse{Payload: payload})
	}
}

type hasFulfilledResponse struct {
	PrescriptionID string `json:"prescription_id"`
	Party          string `json:"party"`
	Fulfilled      bool   `json:"fulfilled"`
}

// HasFulfilled reports whether a party already fulfilled the record. Unknown
// prescription IDs answer fulfilled=false rather than 404; see
// service.PrescriptionService.HasPartyFulfilled.
func HasFulfilled(svc service.PrescriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		party := c.Params("party")
		ok, err := svc.HasPartyFulfilled(c.UserContext(), id, party)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(hasFulfilledResponse{PrescriptionID: id, Party: party, Fulfilled: ok})
	}
}

type listResponse struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// ListPrescriptions looks up prescription IDs by recipient or by issuer,
// exactly one of which must be given as a query parameter.
func ListPrescriptions(svc service.PrescriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipient := c.Query("recipient")
		issuer := c.Query("issuer")

		var (
			ids []string
			err error
		)
		switch {
		case recipient != "" && issuer == "":
			ids, err = svc.ListByRecipient(c.UserContext(), recipient)
		case issuer != "" && recipient == "":
			ids, err = svc.ListByIssuer(c.UserContext(), issuer)
		default:
			return writeError(c, fiber.StatusBadRequest, "MISSING_FILTER", "exactly one of recipient or issuer is required")
		}
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(listResponse{IDs: ids, Total: len(ids)})
	}
}
