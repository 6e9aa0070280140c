package service

import "errors"

// Every failure of the registry maps to exactly one of these kinds. They are
// deterministic: retrying with the same inputs reproduces the same error.
// A content mismatch is not in this set — it is an expected verification
// outcome and surfaces as model.VerdictContentMismatch instead.
var (
	// ErrUnauthorized covers a failed role check and, deliberately, any
	// oracle failure or timeout: authorization fails closed.
	ErrUnauthorized = errors.New("party is not authorized for this operation")

	// ErrInvalidExpiry is returned when the requested expiry is not strictly
	// in the future at issuance time.
	ErrInvalidExpiry = errors.New("expiry must be strictly in the future")

	// ErrDuplicateRecord is returned when a prescription with the same
	// content fingerprint is already registered. The existing record is
	// never overwritten.
	ErrDuplicateRecord = errors.New("prescription already registered for this fingerprint")

	// ErrNotFound is returned by reads and writes that require an existing
	// prescription.
	ErrNotFound = errors.New("prescription not found")

	// ErrExpired is returned when a fulfillment is attempted strictly after
	// the record's expiry.
	ErrExpired = errors.New("prescription has expired")

	// ErrAlreadyFulfilled is returned when a party attempts a second
	// fulfillment of the same prescription.
	ErrAlreadyFulfilled = errors.New("party has already fulfilled this prescription")

	ErrIdentityRequired = errors.New("identity is required")
	ErrLocatorRequired  = errors.New("locator is required")
	ErrReaderNil        = errors.New("reader is nil")
)
