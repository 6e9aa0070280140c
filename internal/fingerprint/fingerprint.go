package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the width of a content fingerprint in bytes.
const Size = sha256.Size

// Fingerprint is the deterministic hash of a document's canonical bytes.
// It doubles as the primary key of the prescription it belongs to.
type Fingerprint [Size]byte

var ErrInvalid = errors.New("invalid fingerprint")

// Compute hashes the given document bytes.
func Compute(data []byte) Fingerprint {
	return Fingerprint(sha256.Sum256(data))
}

// Hex returns the bare lowercase hex encoding.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

// String returns the display form with the 0x prefix.
func (f Fingerprint) String() string {
	return "0x" + f.Hex()
}

// Parse decodes a fingerprint from its hex form. The 0x prefix is optional;
// anything that is not exactly Size bytes of hex fails with ErrInvalid.
func Parse(s string) (Fingerprint, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != Size*2 {
		return Fingerprint{}, fmt.Errorf("%w: want %d hex characters, got %d", ErrInvalid, Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var f Fingerprint
	copy(f[:], b)
	return f, nil
}
