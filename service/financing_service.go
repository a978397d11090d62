package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"financing-ledger/config"
	"financing-ledger/domain"
	"financing-ledger/events"
	"financing-ledger/lock"
	"financing-ledger/repository"
)

const publishTimeout = 5 * time.Second

// LedgerInvoker records an approval on the external ledger and returns the
// tool output.
type LedgerInvoker interface {
	InvokeApproval(ctx context.Context, recordID uint64) (string, error)
}

type FinancingService struct {
	repo   repository.FinancingRepository
	cache  repository.CacheRepository
	ledger LedgerInvoker
	locker lock.Locker
	events events.Publisher
	logger logrus.FieldLogger
	now    func() time.Time

	// cacheMu orders cache fills against invalidations. versions counts
	// committed updates per record so a read that loaded a row before an
	// update commits never puts it back into the cache.
	cacheMu  sync.Mutex
	versions map[uint64]uint64
}

// NewFinancingService wires the service. cache, locker and publisher may be
// nil, in which case in-memory and no-op implementations are used.
func NewFinancingService(
	repo repository.FinancingRepository,
	cache repository.CacheRepository,
	invoker LedgerInvoker,
	locker lock.Locker,
	publisher events.Publisher,
	logger logrus.FieldLogger,
) *FinancingService {
	if cache == nil {
		cache = repository.NewMockCache()
	}
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &FinancingService{
		repo:   repo,
		cache:  cache,
		ledger: invoker,
		locker: locker,
		events: publisher,
		logger:   logger,
		now:      time.Now,
		versions: make(map[uint64]uint64),
	}
}

func validateInput(input domain.FinancingInput) error {
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"vehicle_value", input.VehicleValue},
		{"down_payment", input.DownPayment},
		{"financed_amount", input.FinancedAmount},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return domain.Validationf("%s must not be negative", a.name)
		}
	}
	if input.VehicleValue.GreaterThan(decimal.NewFromFloat(MaxVehicleValue)) {
		return domain.Validationf("vehicle_value exceeds the maximum of %.2f", MaxVehicleValue)
	}
	if input.InterestRate.IsNegative() {
		return domain.Validationf("interest_rate must not be negative")
	}
	if input.InterestRate.GreaterThan(decimal.NewFromFloat(MaxInterestRate)) {
		return domain.Validationf("interest_rate exceeds the maximum of %.2f%%", MaxInterestRate)
	}
	if input.TermMonths < MinTermMonths {
		return domain.Validationf("term_months must be positive")
	}
	if input.TermMonths > MaxTermMonths {
		return domain.Validationf("term_months exceeds the maximum of %d", MaxTermMonths)
	}
	if !input.FinancedAmount.Equal(input.VehicleValue.Sub(input.DownPayment)) {
		return domain.Validationf("financed_amount must equal vehicle_value minus down_payment")
	}
	return nil
}

// CreateRecord stores a new financing in pending status.
func (s *FinancingService) CreateRecord(ctx context.Context, input domain.FinancingInput) (domain.Financing, error) {
	if err := validateInput(input); err != nil {
		return domain.Financing{}, err
	}

	f := domain.Financing{
		VehicleValue:   input.VehicleValue,
		DownPayment:    input.DownPayment,
		FinancedAmount: input.FinancedAmount,
		InterestRate:   input.InterestRate,
		TermMonths:     input.TermMonths,
		Status:         domain.StatusPending,
	}
	if err := s.repo.Create(ctx, &f); err != nil {
		config.LogError(s.logger, "service", "CreateRecord", "repo.Create", input, err)
		return domain.Financing{}, fmt.Errorf("%w: create financing: %w", domain.ErrPersistence, err)
	}

	return f, nil
}

func (s *FinancingService) GetRecord(ctx context.Context, id uint64) (domain.Financing, error) {
	if f, ok := s.cache.Get(ctx, id); ok {
		return f, nil
	}

	version := s.version(id)
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Financing{}, s.readError(err, "GetRecord", id)
	}

	s.fill(ctx, f, version)
	return f, nil
}

// UpdateStatus applies newStatus to the record. Moving a record that is not
// yet approved to approved first records the approval on the ledger; the
// local change is committed only if that call succeeds. Every other change is
// written directly. The whole sequence runs under a per-record lock.
func (s *FinancingService) UpdateStatus(ctx context.Context, id uint64, newStatus domain.Status) (domain.Financing, error) {
	if newStatus == "" {
		return domain.Financing{}, domain.Validationf("status is required")
	}

	unlock, err := s.locker.Lock(ctx, lockKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Financing{}, err
		}
		return domain.Financing{}, fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	defer unlock()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Financing{}, s.readError(err, "UpdateStatus", id)
	}

	approvedAt := current.ApprovedAt
	guarded := newStatus.IsApproved() && !current.Status.IsApproved()

	var ledgerOutput string
	if guarded {
		ledgerOutput, err = s.ledger.InvokeApproval(ctx, id)
		if err != nil {
			return domain.Financing{}, asLedgerError(id, err)
		}
		now := s.now().UTC()
		approvedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, id, newStatus, approvedAt)
	if err != nil {
		if guarded {
			// The ledger already holds the approval; only reconciliation can fix this.
			s.logger.WithFields(logrus.Fields{
				"module":        "service",
				"financing_id":  id,
				"ledger_output": ledgerOutput,
			}).Error("approval recorded on ledger but local commit failed: " + err.Error())
		}
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Financing{}, err
		}
		return domain.Financing{}, fmt.Errorf("%w: update financing %d: %w", domain.ErrPersistence, id, err)
	}

	s.invalidate(ctx, id)
	if guarded {
		s.publishApproved(ctx, updated, ledgerOutput)
	}
	return updated, nil
}

func (s *FinancingService) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Financing, error) {
	list, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		config.LogError(s.logger, "service", "ListByStatus", "repo.ListByStatus", status, err)
		return nil, fmt.Errorf("%w: list financings: %w", domain.ErrPersistence, err)
	}
	return list, nil
}

func (s *FinancingService) ListAll(ctx context.Context) ([]domain.Financing, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		config.LogError(s.logger, "service", "ListAll", "repo.ListAll", nil, err)
		return nil, fmt.Errorf("%w: list financings: %w", domain.ErrPersistence, err)
	}
	return list, nil
}

// Installments returns the monthly payment plan for a stored record.
func (s *FinancingService) Installments(ctx context.Context, id uint64) (domain.InstallmentPlan, error) {
	f, err := s.GetRecord(ctx, id)
	if err != nil {
		return domain.InstallmentPlan{}, err
	}
	return CalculateInstallments(f)
}

func (s *FinancingService) readError(err error, funcName string, id uint64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	config.LogError(s.logger, "service", funcName, "repo.FindByID", id, err)
	return fmt.Errorf("%w: read financing %d: %w", domain.ErrPersistence, id, err)
}

func (s *FinancingService) version(id uint64) uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.versions[id]
}

// fill caches f unless the record was updated since version was read.
func (s *FinancingService) fill(ctx context.Context, f domain.Financing, version uint64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.versions[f.ID] != version {
		return
	}
	if err := s.cache.Set(ctx, f); err != nil {
		s.logger.WithFields(logrus.Fields{
			"module":       "service",
			"financing_id": f.ID,
		}).Warn("failed to cache financing: " + err.Error())
	}
}

// invalidate must run while the record lock is held.
func (s *FinancingService) invalidate(ctx context.Context, id uint64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.versions[id]++
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.WithFields(logrus.Fields{
			"module":       "service",
			"financing_id": id,
		}).Warn("failed to invalidate cached financing: " + err.Error())
	}
}

func (s *FinancingService) publishApproved(ctx context.Context, f domain.Financing, ledgerOutput string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.NewFinancingApproved(f, ledgerOutput, s.now())
	if err := s.events.Publish(ctx, strconv.FormatUint(f.ID, 10), event); err != nil {
		config.LogError(s.logger, "service", "UpdateStatus", "events.Publish", event, err)
	}
}

func asLedgerError(id uint64, err error) error {
	var ledgerErr *domain.LedgerError
	if errors.As(err, &ledgerErr) {
		return err
	}
	return &domain.LedgerError{RecordID: id, Diagnostic: err.Error(), Err: err}
}

func lockKey(id uint64) string {
	return "financing:" + strconv.FormatUint(id, 10)
}
