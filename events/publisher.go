package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financing-ledger/domain"
)

const FinancingApprovedType = "financing.approved"

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// FinancingApproved is emitted after an approval is committed locally. It
// carries the ledger tool output so the two sides can be reconciled.
type FinancingApproved struct {
	EventID        string          `json:"event_id"`
	Type           string          `json:"type"`
	FinancingID    uint64          `json:"financing_id"`
	FinancedAmount decimal.Decimal `json:"financed_amount"`
	ApprovedAt     time.Time       `json:"approved_at"`
	LedgerOutput   string          `json:"ledger_output"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func NewFinancingApproved(f domain.Financing, ledgerOutput string, now time.Time) FinancingApproved {
	e := FinancingApproved{
		EventID:        uuid.NewString(),
		Type:           FinancingApprovedType,
		FinancingID:    f.ID,
		FinancedAmount: f.FinancedAmount,
		LedgerOutput:   ledgerOutput,
		OccurredAt:     now.UTC(),
	}
	if f.ApprovedAt != nil {
		e.ApprovedAt = f.ApprovedAt.UTC()
	}
	return e
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error {
	return nil
}
