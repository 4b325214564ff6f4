package ledger

import "errors"

// Sentinel errors surfaced verbatim to callers; the ledger never retries.
var (
	ErrNotFound            = errors.New("ledger: account not found")
	ErrInsufficientCredits = errors.New("ledger: insufficient credits")
)
