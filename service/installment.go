package service

import (
	"math"

	"github.com/shopspring/decimal"

	"financing-ledger/domain"
)

// CalculateInstallments computes a fixed monthly payment (French
// amortization) over the financed amount, treating InterestRate as an
// annual percentage.
func CalculateInstallments(f domain.Financing) (domain.InstallmentPlan, error) {
	if f.TermMonths < MinTermMonths {
		return domain.InstallmentPlan{}, domain.Validationf("term_months must be at least %d", MinTermMonths)
	}
	if f.InterestRate.IsNegative() {
		return domain.InstallmentPlan{}, domain.Validationf("interest_rate must not be negative")
	}

	amount := f.FinancedAmount.InexactFloat64()
	rate := f.InterestRate.InexactFloat64()
	n := float64(f.TermMonths)

	var payment float64
	if rate == 0 {
		payment = amount / n
	} else {
		monthlyRate := (rate / 100) / 12
		payment = amount * (monthlyRate / (1 - math.Pow(1+monthlyRate, -n)))
	}

	total := payment * n
	interest := total - amount

	return domain.InstallmentPlan{
		FinancingID:    f.ID,
		TermMonths:     f.TermMonths,
		MonthlyPayment: decimal.NewFromFloat(payment).Round(2),
		TotalPayment:   decimal.NewFromFloat(total).Round(2),
		TotalInterest:  decimal.NewFromFloat(interest).Round(2),
	}, nil
}
