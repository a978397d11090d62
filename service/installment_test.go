package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financing-ledger/domain"
)

func TestCalculateInstallments_WithInterest(t *testing.T) {
	f := domain.Financing{
		ID:             3,
		FinancedAmount: decimal.NewFromInt(10000),
		InterestRate:   decimal.NewFromInt(12),
		TermMonths:     24,
	}

	plan, err := CalculateInstallments(f)

	require.NoError(t, err)
	assert.Equal(t, "470.73", plan.MonthlyPayment.StringFixed(2))
	assert.True(t, plan.TotalInterest.IsPositive())
	assert.Equal(t, uint64(3), plan.FinancingID)
}

func TestCalculateInstallments_ZeroInterest(t *testing.T) {
	f := domain.Financing{
		FinancedAmount: decimal.NewFromInt(1200),
		InterestRate:   decimal.Zero,
		TermMonths:     12,
	}

	plan, err := CalculateInstallments(f)

	require.NoError(t, err)
	assert.True(t, plan.MonthlyPayment.Equal(decimal.NewFromInt(100)), "got %s", plan.MonthlyPayment)
	assert.True(t, plan.TotalInterest.IsZero())
}

func TestCalculateInstallments_InvalidTerm(t *testing.T) {
	f := domain.Financing{
		FinancedAmount: decimal.NewFromInt(1000),
		InterestRate:   decimal.NewFromInt(10),
		TermMonths:     0,
	}

	_, err := CalculateInstallments(f)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
