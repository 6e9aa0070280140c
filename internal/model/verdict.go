package model

// Verdict is the outcome of verifying a scanned prescription code against
// the ledger. A content mismatch is an expected verification outcome, not a
// system fault, so it lives here rather than in the error set.
type Verdict string

const (
	VerdictValid           Verdict = "valid"
	VerdictNotFound        Verdict = "not_found"
	VerdictContentMismatch Verdict = "content_mismatch"
	VerdictExpired         Verdict = "expired"
)
