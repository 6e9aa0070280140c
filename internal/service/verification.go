package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rxledger/internal/fingerprint"
	"rxledger/internal/model"
	"rxledger/internal/repository"
)

// VerificationService computes a validity verdict for a scanned code.
// It is a pure read: it never mutates ledger state, so a call may be retried
// or cancelled freely. It deliberately does not consider whether a specific
// dispenser has already fulfilled the record — that is not a validity failure
// of the prescription (other parties may still fulfill it) and stays a
// caller-side check via HasPartyFulfilled.
type VerificationService interface {
	// Verify checks the claimed record ID against the independently carried
	// fingerprint. The only error is a storage failure; every expected
	// outcome is a Verdict.
	Verify(ctx context.Context, claimed, carried fingerprint.Fingerprint) (model.Verdict, error)
}

type verificationService struct {
	repo repository.PrescriptionRepository
	now  func() time.Time
}

// NewVerificationService constructs a new VerificationService.
func NewVerificationService(repo repository.PrescriptionRepository) VerificationService {
	return &verificationService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *verificationService) Verify(ctx context.Context, claimed, carried fingerprint.Fingerprint) (model.Verdict, error) {
	rec, err := s.repo.FindByID(ctx, claimed.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.VerdictNotFound, nil
		}
		return "", err
	}

	// The presented document's bytes do not hash to what was registered, or
	// the two halves of the scanned code disagree with each other.
	if rec.Fingerprint != carried.String() {
		return model.VerdictContentMismatch, nil
	}

	if s.now().After(rec.ExpiresAt) {
		return model.VerdictExpired, nil
	}

	return model.VerdictValid, nil
}
