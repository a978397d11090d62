package repository

import (
	"context"
	"sync"
	"time"

	"financing-ledger/domain"
)

// FinancingRepositoryMemory is an in-memory implementation of FinancingRepository.
// Records are returned by value so callers cannot mutate stored state.
type FinancingRepositoryMemory struct {
	mu     sync.Mutex
	data   map[uint64]domain.Financing
	order  []uint64
	nextID uint64
	now    func() time.Time
}

// NewFinancingRepositoryMemory creates a new in-memory financing repository.
func NewFinancingRepositoryMemory() *FinancingRepositoryMemory {
	return &FinancingRepositoryMemory{
		data:   make(map[uint64]domain.Financing),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create assigns the next id and stores the record.
func (r *FinancingRepositoryMemory) Create(ctx context.Context, f *domain.Financing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	f.ID = r.nextID
	f.CreatedAt = now
	f.UpdatedAt = now
	r.nextID++

	r.data[f.ID] = copyFinancing(*f)
	r.order = append(r.order, f.ID)
	return nil
}

func (r *FinancingRepositoryMemory) FindByID(ctx context.Context, id uint64) (domain.Financing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Financing{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.data[id]
	if !ok {
		return domain.Financing{}, domain.NotFound(id)
	}
	return copyFinancing(f), nil
}

func (r *FinancingRepositoryMemory) UpdateStatus(
	ctx context.Context,
	id uint64,
	status domain.Status,
	approvedAt *time.Time,
) (domain.Financing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Financing{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.data[id]
	if !ok {
		return domain.Financing{}, domain.NotFound(id)
	}

	f.Status = status
	f.ApprovedAt = copyTime(approvedAt)
	f.UpdatedAt = r.now()
	r.data[id] = f

	return copyFinancing(f), nil
}

func (r *FinancingRepositoryMemory) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Financing, error) {
	return r.list(ctx, func(f domain.Financing) bool { return f.Status == status })
}

func (r *FinancingRepositoryMemory) ListAll(ctx context.Context) ([]domain.Financing, error) {
	return r.list(ctx, func(domain.Financing) bool { return true })
}

func (r *FinancingRepositoryMemory) list(ctx context.Context, match func(domain.Financing) bool) ([]domain.Financing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Financing, 0)
	for _, id := range r.order {
		f := r.data[id]
		if match(f) {
			result = append(result, copyFinancing(f))
		}
	}
	return result, nil
}

func copyFinancing(f domain.Financing) domain.Financing {
	f.ApprovedAt = copyTime(f.ApprovedAt)
	return f
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

var _ FinancingRepository = (*FinancingRepositoryMemory)(nil)
