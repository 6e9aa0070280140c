package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rxledger/internal/service"
)

// StoreDocument uploads canonical document bytes (multipart/form-data, field
// name: file) to off-chain storage and returns the content fingerprint plus
// the locator the issuance call should carry.
func StoreDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Store(c.UserContext(), f, ct)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

type documentURLResponse struct {
	URL string `json:"url"`
}

// DocumentURL returns a time-limited download URL for a stored document,
// looked up by its content fingerprint.
func DocumentURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.PresignURL(c.UserContext(), c.Params("fingerprint"), 15*time.Minute)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(documentURLResponse{URL: url})
	}
}
