package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rxledger/internal/fingerprint"
	"rxledger/internal/model"
	"rxledger/internal/oracle"
	"rxledger/internal/repository"
)

// IssueInput carries everything needed to register a prescription. The
// fingerprint is accepted in either hex form (with or without 0x) and is
// normalized before it becomes the record's ID.
type IssueInput struct {
	Issuer      string
	Recipient   string
	Fingerprint string
	Locator     string
	ExpiresAt   time.Time
}

// PrescriptionService defines the write and read paths of the ledger.
type PrescriptionService interface {
	// Issue registers a new prescription and returns its ID (the normalized
	// content fingerprint). Fails with ErrUnauthorized, ErrInvalidExpiry or
	// ErrDuplicateRecord.
	Issue(ctx context.Context, in IssueInput) (string, error)

	// Fulfill appends a fulfillment entry for the dispenser, capturing the
	// dispenser's display name from the oracle at this moment. Fails with
	// ErrNotFound, ErrUnauthorized, ErrExpired or ErrAlreadyFulfilled.
	Fulfill(ctx context.Context, prescriptionID, dispenserID string) (*model.Fulfillment, error)

	// GetDetails returns the full record. Fails with ErrNotFound.
	GetDetails(ctx context.Context, prescriptionID string) (*model.Prescription, error)

	// HasPartyFulfilled reports whether the party already fulfilled the
	// record. Unlike GetDetails, an unknown prescription ID is not an error
	// here — it reports false, which keeps caller-side eligibility checks a
	// single branch. The asymmetry is intentional.
	HasPartyFulfilled(ctx context.Context, prescriptionID, party string) (bool, error)

	// ListByRecipient returns prescription IDs for the beneficiary in issuance order.
	ListByRecipient(ctx context.Context, recipient string) ([]string, error)

	// ListByIssuer returns prescription IDs registered by the issuer in issuance order.
	ListByIssuer(ctx context.Context, issuer string) ([]string, error)

	// ScanPayload builds the string the issuing side embeds in the QR code
	// for the record. Fails with ErrNotFound.
	ScanPayload(ctx context.Context, prescriptionID string) (string, error)
}

// prescriptionService is a concrete implementation of PrescriptionService.
type prescriptionService struct {
	repo  repository.PrescriptionRepository
	authz oracle.Oracle
	// oracleTimeout bounds every oracle call; an answer that doesn't arrive
	// in time counts as unauthorized.
	oracleTimeout time.Duration
	now           func() time.Time
}

// NewPrescriptionService constructs a new PrescriptionService.
func NewPrescriptionService(repo repository.PrescriptionRepository, authz oracle.Oracle, oracleTimeout time.Duration) PrescriptionService {
	return &prescriptionService{
		repo:          repo,
		authz:         authz,
		oracleTimeout: oracleTimeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// authorized asks the oracle for a fresh role check. Grants are never cached
// across calls; revocation between issuance and fulfillment must be seen.
func (s *prescriptionService) authorized(ctx context.Context, identity string, role oracle.Role) bool {
	ctx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	ok, err := s.authz.IsAuthorized(ctx, identity, role)
	if err != nil {
		// Fail closed: an unreachable or slow oracle never grants access.
		return false
	}
	return ok
}

func (s *prescriptionService) Issue(ctx context.Context, in IssueInput) (string, error) {
	if in.Issuer == "" || in.Recipient == "" {
		return "", ErrIdentityRequired
	}
	if in.Locator == "" {
		return "", ErrLocatorRequired
	}
	fp, err := fingerprint.Parse(in.Fingerprint)
	if err != nil {
		return "", err
	}

	if !s.authorized(ctx, in.Issuer, oracle.RoleIssuer) {
		return "", ErrUnauthorized
	}

	now := s.now()
	if !in.ExpiresAt.After(now) {
		return "", ErrInvalidExpiry
	}

	id := fp.String()
	p := &model.Prescription{
		ID:          id,
		Issuer:      in.Issuer,
		Recipient:   in.Recipient,
		Fingerprint: id,
		Locator:     in.Locator,
		IssuedAt:    now,
		ExpiresAt:   in.ExpiresAt,
	}
	if _, err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return "", ErrDuplicateRecord
		}
		return "", fmt.Errorf("store prescription: %w", err)
	}
	return id, nil
}

func (s *prescriptionService) Fulfill(ctx context.Context, prescriptionID, dispenserID string) (*model.Fulfillment, error) {
	if dispenserID == "" {
		return nil, ErrIdentityRequired
	}
	id := normalizeID(prescriptionID)

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load prescription: %w", err)
	}

	if !s.authorized(ctx, dispenserID, oracle.RoleDispenser) {
		return nil, ErrUnauthorized
	}

	// Fulfillable while now <= expiresAt; expiry itself is still inside the window.
	now := s.now()
	if now.After(rec.ExpiresAt) {
		return nil, ErrExpired
	}

	name, err := s.displayName(ctx, dispenserID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	entry := &model.Fulfillment{
		PrescriptionID: rec.ID,
		Party:          dispenserID,
		PartyName:      name,
		FulfilledAt:    now,
	}
	out, err := s.repo.AppendFulfillment(ctx, rec.ID, entry)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrFulfillmentExists):
			return nil, ErrAlreadyFulfilled
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("append fulfillment: %w", err)
	}
	return out, nil
}

// displayName is captured eagerly at fulfillment time, never looked up later:
// the name on the fulfillment log must reflect the registration as it was
// when the dispenser acted.
func (s *prescriptionService) displayName(ctx context.Context, dispenserID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()
	return s.authz.DisplayName(ctx, dispenserID, oracle.RoleDispenser)
}

func (s *prescriptionService) GetDetails(ctx context.Context, prescriptionID string) (*model.Prescription, error) {
	rec, err := s.repo.FindByID(ctx, normalizeID(prescriptionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *prescriptionService) HasPartyFulfilled(ctx context.Context, prescriptionID, party string) (bool, error) {
	return s.repo.HasFulfillment(ctx, normalizeID(prescriptionID), party)
}

func (s *prescriptionService) ListByRecipient(ctx context.Context, recipient string) ([]string, error) {
	return s.repo.ListByRecipient(ctx, recipient)
}

func (s *prescriptionService) ListByIssuer(ctx context.Context, issuer string) ([]string, error) {
	return s.repo.ListByIssuer(ctx, issuer)
}

func (s *prescriptionService) ScanPayload(ctx context.Context, prescriptionID string) (string, error) {
	rec, err := s.GetDetails(ctx, prescriptionID)
	if err != nil {
		return "", err
	}
	fp, err := fingerprint.Parse(rec.Fingerprint)
	if err != nil {
		return "", fmt.Errorf("stored fingerprint: %w", err)
	}
	return fingerprint.EncodeScanPayload(fp), nil
}

// normalizeID maps any accepted hex spelling to the canonical stored form.
// Strings that are not fingerprints at all are passed through; the lookup
// simply misses.
func normalizeID(id string) string {
	fp, err := fingerprint.Parse(id)
	if err != nil {
		return id
	}
	return fp.String()
}
