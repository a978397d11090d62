package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle label of a financing record. Only pending and
// approved carry behavior; any other label is stored as given.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

func (s Status) IsApproved() bool {
	return s == StatusApproved
}

// Financing is a vehicle financing agreement and its approval state.
type Financing struct {
	ID             uint64          `json:"id"`
	VehicleValue   decimal.Decimal `json:"vehicle_value"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	FinancedAmount decimal.Decimal `json:"financed_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	TermMonths     int             `json:"term_months"`
	Status         Status          `json:"status"`
	ApprovedAt     *time.Time      `json:"approved_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type FinancingInput struct {
	VehicleValue   decimal.Decimal `json:"vehicle_value" binding:"gte=0"`
	DownPayment    decimal.Decimal `json:"down_payment" binding:"gte=0"`
	FinancedAmount decimal.Decimal `json:"financed_amount" binding:"gte=0"`
	InterestRate   decimal.Decimal `json:"interest_rate" binding:"gte=0"`
	TermMonths     int             `json:"term_months" binding:"required,gt=0"`
}

type StatusUpdate struct {
	Status Status `json:"status" binding:"required"`
}
