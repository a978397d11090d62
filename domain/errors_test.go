package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := error(&LedgerError{RecordID: 4, Diagnostic: "error: bad auth", Err: cause})

	assert.ErrorIs(t, err, ErrLedgerInvocation)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "ledger approval for financing 4 failed: error: bad auth")

	bare := &LedgerError{RecordID: 2}
	assert.ErrorIs(t, bare, ErrLedgerInvocation)
	assert.EqualError(t, bare, "ledger approval for financing 2 failed")
}

func TestHelpers(t *testing.T) {
	assert.ErrorIs(t, Validationf("term_months must be positive"), ErrValidation)
	assert.ErrorIs(t, NotFound(3), ErrNotFound)
	assert.Contains(t, NotFound(3).Error(), "id 3")
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusApproved.IsApproved())
	assert.False(t, StatusPending.IsApproved())
	assert.False(t, Status("Approved").IsApproved())
}
