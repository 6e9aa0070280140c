package model

import "time"

// Prescription is a registered prescription record on the ledger.
// This is a pure domain model with no database-specific dependencies or tags.
// The ID is the content fingerprint of the canonical document bytes; Fingerprint
// holds the same value as an explicit field so verification can compare a claimed
// ID against an independently carried fingerprint.
type Prescription struct {
	ID           string        `json:"id"`
	Issuer       string        `json:"issuer"`
	Recipient    string        `json:"recipient"`
	Fingerprint  string        `json:"fingerprint"`
	Locator      string        `json:"locator"`
	IssuedAt     time.Time     `json:"issued_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Fulfillments []Fulfillment `json:"fulfillments"`
}

// Fulfillment records that a dispensing party acted on a prescription.
// Entries are append-only and never reordered; PartyName is the display name
// the authorization oracle reported at fulfillment time and is kept verbatim
// even if the party's registration later changes.
type Fulfillment struct {
	PrescriptionID string    `json:"prescription_id"`
	Party          string    `json:"party"`
	PartyName      string    `json:"party_name"`
	FulfilledAt    time.Time `json:"fulfilled_at"`
}
