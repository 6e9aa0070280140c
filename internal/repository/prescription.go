package repository

import (
	"context"
	"errors"

	"rxledger/internal/model"
)

// Package repository contains data access for the prescription ledger.
// Implementations live in subpackages (e.g., postgres). No business logic
// here — strictly persistence operations, but the persistence layer is what
// enforces the uniqueness and one-fulfillment-per-party invariants under
// concurrency (primary keys plus row locks), so those surface as errors here.

var (
	// ErrDuplicateID is returned by Create when a prescription with the same
	// ID is already stored. Records are create-once; there is no overwrite.
	ErrDuplicateID = errors.New("prescription id already exists")

	// ErrFulfillmentExists is returned by AppendFulfillment when the party
	// already has an entry in the record's fulfillment sequence.
	ErrFulfillmentExists = errors.New("fulfillment already recorded for party")
)

// PrescriptionRepository defines persistence for prescriptions, their
// fulfillment logs, and the issuer/recipient lookup indexes.
type PrescriptionRepository interface {
	// Create stores a new prescription and appends its ID to both the issuer
	// and the recipient index, all in one transaction. Returns ErrDuplicateID
	// if the ID is taken; in that case nothing is written.
	Create(ctx context.Context, p *model.Prescription) (*model.Prescription, error)

	// FindByID returns a prescription with its full fulfillment sequence in
	// insertion order. Returns sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.Prescription, error)

	// AppendFulfillment adds an entry to the record's fulfillment sequence
	// while holding a row lock on the record. Returns sql.ErrNoRows if the
	// prescription does not exist and ErrFulfillmentExists if the party has
	// already fulfilled it.
	AppendFulfillment(ctx context.Context, prescriptionID string, f *model.Fulfillment) (*model.Fulfillment, error)

	// HasFulfillment reports whether the party appears in the record's
	// fulfillment sequence. An unknown prescription ID yields (false, nil).
	HasFulfillment(ctx context.Context, prescriptionID, party string) (bool, error)

	// ListByIssuer returns prescription IDs issued by the party, in issuance order.
	ListByIssuer(ctx context.Context, issuer string) ([]string, error)

	// ListByRecipient returns prescription IDs for the beneficiary, in issuance order.
	ListByRecipient(ctx context.Context, recipient string) ([]string, error)
}
