package fingerprint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload is returned for a scanned payload whose shape is wrong.
// It is distinct from the verification verdicts: a payload that fails the
// shape check never reaches the verification engine.
var ErrMalformedPayload = errors.New("malformed scan payload")

// EncodeScanPayload builds the string the issuing side embeds in the QR code.
// The fingerprint is carried twice so the dispensing side can detect a
// corrupted or mismatched code without a second round-trip: one half is read
// as the claimed record ID, the other as the independently carried fingerprint.
func EncodeScanPayload(f Fingerprint) string {
	return f.String() + "|" + f.String()
}

// DecodeScanPayload splits a scanned payload into the claimed record ID and
// the carried fingerprint. Both halves must individually be well-formed
// fingerprints; whether they agree with each other is the verification
// engine's call (a disagreement is a content mismatch, not a shape failure).
func DecodeScanPayload(payload string) (claimed, carried Fingerprint, err error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 2 {
		return Fingerprint{}, Fingerprint{}, fmt.Errorf("%w: want 2 segments, got %d", ErrMalformedPayload, len(parts))
	}
	claimed, err = Parse(parts[0])
	if err != nil {
		return Fingerprint{}, Fingerprint{}, fmt.Errorf("%w: first segment: %v", ErrMalformedPayload, err)
	}
	carried, err = Parse(parts[1])
	if err != nil {
		return Fingerprint{}, Fingerprint{}, fmt.Errorf("%w: second segment: %v", ErrMalformedPayload, err)
	}
	return claimed, carried, nil
}
