package domain

import "github.com/shopspring/decimal"

// InstallmentPlan is the fixed monthly payment schedule for a financed amount.
type InstallmentPlan struct {
	FinancingID    uint64          `json:"financing_id"`
	TermMonths     int             `json:"term_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}
