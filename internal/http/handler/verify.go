package handler

import (
	"github.com/gofiber/fiber/v2"

	"rxledger/internal/fingerprint"
	"rxledger/internal/service"
)

type verifyRequest struct {
	// Payload is the raw scanned string ("<fp-hex>|<fp-hex>"). When set it
	// takes precedence over the split fields below.
	Payload string `json:"payload"`

	ClaimedID   string `json:"claimed_id"`
	Fingerprint string `json:"fingerprint"`
}

type verifyResponse struct {
	Verdict string `json:"verdict"`
}

// VerifyPrescription runs the read-side verification algorithm against a
// scanned code. Malformed payloads are rejected here, before the engine runs;
// every well-formed input yields a verdict with HTTP 200.
func VerifyPrescription(svc service.VerificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		var (
			claimed, carried fingerprint.Fingerprint
			err              error
		)
		if req.Payload != "" {
			claimed, carried, err = fingerprint.DecodeScanPayload(req.Payload)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "MALFORMED_PAYLOAD", "scan payload must be two 32-byte hex fingerprints separated by |")
			}
		} else {
			claimed, err = fingerprint.Parse(req.ClaimedID)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "MALFORMED_PAYLOAD", "claimed_id must be 32 bytes of hex")
			}
			carried, err = fingerprint.Parse(req.Fingerprint)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "MALFORMED_PAYLOAD", "fingerprint must be 32 bytes of hex")
			}
		}

		verdict, err := svc.Verify(c.UserContext(), claimed, carried)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(verifyResponse{Verdict: string(verdict)})
	}
}
