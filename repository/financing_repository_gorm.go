package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"financing-ledger/domain"
)

type financingRow struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement"`
	VehicleValue   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DownPayment    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	FinancedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	TermMonths     int             `gorm:"not null"`
	Status         string          `gorm:"type:varchar(64);not null;index"`
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (financingRow) TableName() string {
	return "financings"
}

func rowFromDomain(f domain.Financing) financingRow {
	return financingRow{
		ID:             f.ID,
		VehicleValue:   f.VehicleValue,
		DownPayment:    f.DownPayment,
		FinancedAmount: f.FinancedAmount,
		InterestRate:   f.InterestRate,
		TermMonths:     f.TermMonths,
		Status:         string(f.Status),
		ApprovedAt:     f.ApprovedAt,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

func (r financingRow) toDomain() domain.Financing {
	f := domain.Financing{
		ID:             r.ID,
		VehicleValue:   r.VehicleValue,
		DownPayment:    r.DownPayment,
		FinancedAmount: r.FinancedAmount,
		InterestRate:   r.InterestRate,
		TermMonths:     r.TermMonths,
		Status:         domain.Status(r.Status),
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if r.ApprovedAt != nil {
		t := r.ApprovedAt.UTC()
		f.ApprovedAt = &t
	}
	return f
}

// FinancingRepositoryGorm stores financing records in a relational database
// through gorm. Every write runs inside its own transaction.
type FinancingRepositoryGorm struct {
	db *gorm.DB
}

func NewFinancingRepositoryGorm(db *gorm.DB) *FinancingRepositoryGorm {
	return &FinancingRepositoryGorm{db: db}
}

// Migrate creates or updates the financings table.
func (r *FinancingRepositoryGorm) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&financingRow{})
}

func (r *FinancingRepositoryGorm) Create(ctx context.Context, f *domain.Financing) error {
	row := rowFromDomain(*f)
	row.ID = 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return err
	}

	*f = row.toDomain()
	return nil
}

func (r *FinancingRepositoryGorm) FindByID(ctx context.Context, id uint64) (domain.Financing, error) {
	var row financingRow
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Financing{}, domain.NotFound(id)
	}
	if err != nil {
		return domain.Financing{}, err
	}
	return row.toDomain(), nil
}

// UpdateStatus locks the row for the duration of the write.
func (r *FinancingRepositoryGorm) UpdateStatus(
	ctx context.Context,
	id uint64,
	status domain.Status,
	approvedAt *time.Time,
) (domain.Financing, error) {
	var row financingRow

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound(id)
		}
		if err != nil {
			return err
		}

		row.Status = string(status)
		row.ApprovedAt = approvedAt
		return tx.Save(&row).Error
	})
	if err != nil {
		return domain.Financing{}, err
	}

	return row.toDomain(), nil
}

func (r *FinancingRepositoryGorm) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Financing, error) {
	var rows []financingRow
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func (r *FinancingRepositoryGorm) ListAll(ctx context.Context) ([]domain.Financing, error) {
	var rows []financingRow
	if err := r.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func toDomainList(rows []financingRow) []domain.Financing {
	result := make([]domain.Financing, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result
}

var _ FinancingRepository = (*FinancingRepositoryGorm)(nil)
