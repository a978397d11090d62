package repository

import (
	"context"

	"financing-ledger/domain"
)

// CacheRepository is a read-through cache of financing records keyed by id.
// A miss and a backend failure look the same to callers of Get.
type CacheRepository interface {
	Get(ctx context.Context, id uint64) (domain.Financing, bool)
	Set(ctx context.Context, f domain.Financing) error
	Delete(ctx context.Context, id uint64) error
}
