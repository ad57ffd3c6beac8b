package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
	"gorm.io/gorm/clause"
)

// FinanceProjection is an optional saved snapshot of a computed cash-flow
// projection. One row per (user, account, projection date).
type FinanceProjection struct {
	ID             int              `gorm:"primary_key" json:"id"`
	UserId         int              `gorm:"index:idx_projection_key,unique;not null" json:"user_id"`
	AccountId      int              `gorm:"index:idx_projection_key,unique" json:"account_id"`
	ProjectionDate time.Time        `gorm:"index:idx_projection_key,unique;not null" json:"projection_date"`
	ComputedAt     time.Time        `gorm:"not null" json:"computed_at"`
	DaysRemaining  int              `json:"days_remaining"`
	BillsAmount    decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"bills_amount"`
	TotalAvailable decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_available"`
	BillsRemaining decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"bills_remaining"`
	CashAvailable  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"cash_available"`
	CashPerWeek    *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cash_per_week"`
	SpendingPerDay *decimal.Decimal `gorm:"type:decimal(20,4)" json:"spending_per_day"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFinanceProjection struct {
	AccountId      int              `json:"account_id"`
	ProjectionDate time.Time        `json:"projection_date" binding:"required"`
	DaysRemaining  int              `json:"days_remaining"`
	BillsAmount    decimal.Decimal  `json:"bills_amount"`
	TotalAvailable decimal.Decimal  `json:"total_available"`
	BillsRemaining decimal.Decimal  `json:"bills_remaining"`
	CashAvailable  decimal.Decimal  `json:"cash_available"`
	CashPerWeek    *decimal.Decimal `json:"cash_per_week"`
	SpendingPerDay *decimal.Decimal `json:"spending_per_day"`
}

// ComputeProjection builds a live projection for the user's current billing
// period: breakdown of every bill, then the cash-flow aggregate. Nothing is
// persisted.
func ComputeProjection(ctx context.Context) (*CashFlowProjection, []BillBreakdown, error) {
	period, err := GetCurrentBillingPeriod(ctx)
	if err != nil {
		return nil, nil, err
	}
	bills, err := GetFinanceBills(ctx)
	if err != nil {
		return nil, nil, err
	}

	paymentsPaid := map[int]int{}
	for billId, status := range period.BillStatuses {
		paymentsPaid[billId] = status.PaymentsPaid
	}

	now := time.Now().UTC()
	daysRemaining := int(normalizeDay(period.EndDate).Sub(normalizeDay(now)).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	breakdowns := CalculateBillsBreakdown(bills, paymentsPaid, period.StartDate, period.EndDate, daysRemaining)
	billsRemaining := CalculateTotalBillsRemaining(breakdowns)

	balances := make([]decimal.Decimal, 0, len(period.AccountBalances))
	for _, b := range period.AccountBalances {
		balances = append(balances, b)
	}

	projection := CalculateCashFlowProjection(balances, billsRemaining, daysRemaining)
	return &projection, breakdowns, nil
}

func SaveProjection(ctx context.Context, input *NewFinanceProjection) (*FinanceProjection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if input.AccountId > 0 {
		if err := utils.ValidateResourceId[FinanceAccount](ctx, userId, input.AccountId); err != nil {
			return nil, errors.New("account not found")
		}
	}

	projection := FinanceProjection{
		UserId:         userId,
		AccountId:      input.AccountId,
		ProjectionDate: normalizeDay(input.ProjectionDate),
		ComputedAt:     time.Now().UTC(),
		DaysRemaining:  input.DaysRemaining,
		BillsAmount:    input.BillsAmount,
		TotalAvailable: input.TotalAvailable,
		BillsRemaining: input.BillsRemaining,
		CashAvailable:  input.CashAvailable,
		CashPerWeek:    input.CashPerWeek,
		SpendingPerDay: input.SpendingPerDay,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "account_id"}, {Name: "projection_date"}},
		UpdateAll: true,
	}).Create(&projection).Error
	if err != nil {
		return nil, err
	}
	return &projection, nil
}

func GetProjections(ctx context.Context, from, to *time.Time) ([]*FinanceProjection, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if from != nil {
		dbCtx = dbCtx.Where("projection_date >= ?", normalizeDay(*from))
	}
	if to != nil {
		dbCtx = dbCtx.Where("projection_date <= ?", normalizeDay(*to))
	}

	var results []*FinanceProjection
	if err := dbCtx.Order("projection_date DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

const projectionBatchSize = 100

type BulkInsertResult struct {
	Inserted     int      `json:"inserted"`
	Deduplicated int      `json:"deduplicated"`
	FailedBatch  []int    `json:"failed_batches"`
	Errors       []string `json:"errors"`
}

// BulkInsertProjections upserts a batch of projections. The batch is first
// de-duplicated by (user, account, projection date), then written in chunks of
// 100. A failed chunk is recorded and skipped; remaining chunks still run.
func BulkInsertProjections(ctx context.Context, inputs []*NewFinanceProjection) (*BulkInsertResult, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	type projectionKey struct {
		AccountId int
		Date      time.Time
	}

	// last write wins within the batch
	seen := map[projectionKey]int{}
	rows := make([]FinanceProjection, 0, len(inputs))
	deduplicated := 0
	now := time.Now().UTC()
	for _, input := range inputs {
		row := FinanceProjection{
			UserId:         userId,
			AccountId:      input.AccountId,
			ProjectionDate: normalizeDay(input.ProjectionDate),
			ComputedAt:     now,
			DaysRemaining:  input.DaysRemaining,
			BillsAmount:    input.BillsAmount,
			TotalAvailable: input.TotalAvailable,
			BillsRemaining: input.BillsRemaining,
			CashAvailable:  input.CashAvailable,
			CashPerWeek:    input.CashPerWeek,
			SpendingPerDay: input.SpendingPerDay,
		}
		key := projectionKey{AccountId: row.AccountId, Date: row.ProjectionDate}
		if idx, dup := seen[key]; dup {
			rows[idx] = row
			deduplicated++
			continue
		}
		seen[key] = len(rows)
		rows = append(rows, row)
	}

	db := config.GetDB()
	result := BulkInsertResult{Deduplicated: deduplicated}
	for batchNo, offset := 0, 0; offset < len(rows); batchNo, offset = batchNo+1, offset+projectionBatchSize {
		limit := offset + projectionBatchSize
		if limit > len(rows) {
			limit = len(rows)
		}
		batch := rows[offset:limit]

		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "account_id"}, {Name: "projection_date"}},
			UpdateAll: true,
		}).Create(&batch).Error
		if err != nil {
			// isolate the failure, keep going
			result.FailedBatch = append(result.FailedBatch, batchNo)
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", batchNo, err))
			continue
		}
		result.Inserted += len(batch)
	}
	return &result, nil
}
