package repository

import (
	"context"
	"time"

	"financing-ledger/domain"
)

// FinancingRepository persists financing records. Missing records are
// reported with an error wrapping domain.ErrNotFound.
type FinancingRepository interface {
	Create(ctx context.Context, f *domain.Financing) error
	FindByID(ctx context.Context, id uint64) (domain.Financing, error)
	// UpdateStatus writes status and approvedAt in a single transaction and
	// returns the stored record.
	UpdateStatus(ctx context.Context, id uint64, status domain.Status, approvedAt *time.Time) (domain.Financing, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Financing, error)
	ListAll(ctx context.Context) ([]domain.Financing, error)
}
