package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("financing not found")
	ErrLedgerInvocation = errors.New("ledger invocation failed")
	ErrPersistence      = errors.New("persistence error")
	ErrConflict         = errors.New("financing is being updated by another request")
)

// LedgerError is returned when the external ledger tool could not record an
// approval. Diagnostic holds the tool's stderr, or the exec error when the
// tool produced none.
type LedgerError struct {
	RecordID   uint64
	Diagnostic string
	Err        error
}

func (e *LedgerError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("ledger approval for financing %d failed", e.RecordID)
	}
	return fmt.Sprintf("ledger approval for financing %d failed: %s", e.RecordID, e.Diagnostic)
}

func (e *LedgerError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLedgerInvocation}
	}
	return []error{ErrLedgerInvocation, e.Err}
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(id uint64) error {
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}
