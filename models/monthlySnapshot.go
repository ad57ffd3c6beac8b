package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
	"gorm.io/gorm/clause"
)

// FinanceMonthlySnapshot freezes one month's totals for trend history.
// Month is stored as the first day of the month.
type FinanceMonthlySnapshot struct {
	ID             int             `gorm:"primary_key" json:"id"`
	UserId         int             `gorm:"index:idx_snapshot_key,unique;not null" json:"user_id"`
	Month          time.Time       `gorm:"index:idx_snapshot_key,unique;not null" json:"month"`
	TotalAvailable decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_available"`
	TotalBills     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_bills"`
	BillsPaid      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"bills_paid"`
	CashAvailable  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_available"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFinanceMonthlySnapshot struct {
	Month          time.Time       `json:"month" binding:"required"`
	TotalAvailable decimal.Decimal `json:"total_available"`
	TotalBills     decimal.Decimal `json:"total_bills"`
	BillsPaid      decimal.Decimal `json:"bills_paid"`
	CashAvailable  decimal.Decimal `json:"cash_available"`
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func GetMonthlySnapshots(ctx context.Context, months int) ([]*FinanceMonthlySnapshot, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId).Order("month DESC")
	if months > 0 {
		dbCtx = dbCtx.Limit(months)
	}

	var results []*FinanceMonthlySnapshot
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func UpsertMonthlySnapshot(ctx context.Context, input *NewFinanceMonthlySnapshot) (*FinanceMonthlySnapshot, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	snapshot := FinanceMonthlySnapshot{
		UserId:         userId,
		Month:          firstOfMonth(input.Month),
		TotalAvailable: input.TotalAvailable,
		TotalBills:     input.TotalBills,
		BillsPaid:      input.BillsPaid,
		CashAvailable:  input.CashAvailable,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
		UpdateAll: true,
	}).Create(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// BuildMonthlySnapshot derives a snapshot for the month containing ref from
// the current billing period and live bills. Used by the snapshot worker.
func BuildMonthlySnapshot(ctx context.Context, ref time.Time) (*FinanceMonthlySnapshot, error) {
	projection, breakdowns, err := ComputeProjection(ctx)
	if err != nil {
		return nil, err
	}

	billsPaid := decimal.Zero
	totalBills := decimal.Zero
	for _, b := range breakdowns {
		totalBills = totalBills.Add(b.TotalMonthlyCost)
		if b.PaymentsPaid > 0 {
			billsPaid = billsPaid.Add(b.TotalMonthlyCost)
		}
	}

	return UpsertMonthlySnapshot(ctx, &NewFinanceMonthlySnapshot{
		Month:          ref,
		TotalAvailable: projection.TotalAvailable,
		TotalBills:     totalBills.Round(2),
		BillsPaid:      billsPaid.Round(2),
		CashAvailable:  projection.CashAvailable,
	})
}
