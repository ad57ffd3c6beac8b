package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

// AccountBalanceMap is a JSON column mapping accountID -> balance at period start.
type AccountBalanceMap map[int]decimal.Decimal

func (m AccountBalanceMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *AccountBalanceMap) Scan(value interface{}) error {
	if value == nil {
		*m = AccountBalanceMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for AccountBalanceMap")
	}
}

type BillStatus struct {
	Paid         bool       `json:"paid"`
	PaidDate     *time.Time `json:"paid_date"`
	PaymentsPaid int        `json:"payments_paid"`
}

// BillStatusMap is a JSON column mapping billID -> payment status for the period.
type BillStatusMap map[int]BillStatus

func (m BillStatusMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *BillStatusMap) Scan(value interface{}) error {
	if value == nil {
		*m = BillStatusMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for BillStatusMap")
	}
}

type FinanceBillingPeriod struct {
	ID              int               `gorm:"primary_key" json:"id"`
	UserId          int               `gorm:"index;not null" json:"user_id"`
	StartDate       time.Time         `gorm:"not null" json:"start_date" binding:"required"`
	EndDate         time.Time         `gorm:"not null" json:"end_date" binding:"required"`
	AccountBalances AccountBalanceMap `gorm:"type:json" json:"account_balances"`
	BillStatuses    BillStatusMap     `gorm:"type:json" json:"bill_statuses"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFinanceBillingPeriod struct {
	StartDate       time.Time         `json:"start_date" binding:"required"`
	EndDate         time.Time         `json:"end_date" binding:"required"`
	AccountBalances AccountBalanceMap `json:"account_balances"`
	BillStatuses    BillStatusMap     `json:"bill_statuses"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewFinanceBillingPeriod) validate(ctx context.Context, userId int, _ int) error {
	if input.EndDate.Before(input.StartDate) {
		return errors.New("end_date must not be before start_date")
	}
	for accountId := range input.AccountBalances {
		if err := utils.ValidateResourceId[FinanceAccount](ctx, userId, accountId); err != nil {
			return errors.New("account in account_balances not found")
		}
	}
	for billId := range input.BillStatuses {
		if err := utils.ValidateResourceId[FinanceBill](ctx, userId, billId); err != nil {
			return errors.New("bill in bill_statuses not found")
		}
	}
	return nil
}

func GetBillingPeriods(ctx context.Context) ([]*FinanceBillingPeriod, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	var results []*FinanceBillingPeriod
	err := db.WithContext(ctx).Where("user_id = ?", userId).Order("start_date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetCurrentBillingPeriod returns the period containing today, or the most recent one.
func GetCurrentBillingPeriod(ctx context.Context) (*FinanceBillingPeriod, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	now := time.Now()
	var result FinanceBillingPeriod
	err := db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userId, now, now).
		Order("start_date DESC").First(&result).Error
	if err == nil {
		return &result, nil
	}
	err = db.WithContext(ctx).Where("user_id = ?", userId).Order("start_date DESC").First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func CreateBillingPeriod(ctx context.Context, input *NewFinanceBillingPeriod) (*FinanceBillingPeriod, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	period := FinanceBillingPeriod{
		UserId:          userId,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		AccountBalances: input.AccountBalances,
		BillStatuses:    input.BillStatuses,
	}
	if period.AccountBalances == nil {
		period.AccountBalances = AccountBalanceMap{}
	}
	if period.BillStatuses == nil {
		period.BillStatuses = BillStatusMap{}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func UpdateBillingPeriod(ctx context.Context, id int, input *NewFinanceBillingPeriod) (*FinanceBillingPeriod, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	period, err := utils.FetchModel[FinanceBillingPeriod](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	period.StartDate = input.StartDate
	period.EndDate = input.EndDate
	if input.AccountBalances != nil {
		period.AccountBalances = input.AccountBalances
	}
	if input.BillStatuses != nil {
		period.BillStatuses = input.BillStatuses
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(period).Error; err != nil {
		return nil, err
	}
	return period, nil
}

type MarkBillPaidInput struct {
	PeriodId int        `json:"period_id" binding:"required"`
	BillId   int        `json:"bill_id" binding:"required"`
	Paid     *bool      `json:"paid" binding:"required"`
	PaidDate *time.Time `json:"paid_date"`
}

// MarkBillPaid flips a bill's paid status inside a billing period and bumps
// payments_paid. Unmarking decrements but never goes below zero.
func MarkBillPaid(ctx context.Context, input *MarkBillPaidInput) (*FinanceBillingPeriod, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	period, err := utils.FetchModel[FinanceBillingPeriod](ctx, userId, input.PeriodId)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[FinanceBill](ctx, userId, input.BillId); err != nil {
		return nil, errors.New("bill not found")
	}

	if period.BillStatuses == nil {
		period.BillStatuses = BillStatusMap{}
	}
	status := period.BillStatuses[input.BillId]

	paid := utils.DereferencePtr(input.Paid)
	if paid && !status.Paid {
		status.PaymentsPaid++
	}
	if !paid && status.Paid && status.PaymentsPaid > 0 {
		status.PaymentsPaid--
	}
	status.Paid = paid
	if paid {
		paidDate := input.PaidDate
		if paidDate == nil {
			now := time.Now()
			paidDate = &now
		}
		status.PaidDate = paidDate
	} else {
		status.PaidDate = nil
	}
	period.BillStatuses[input.BillId] = status

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(period).Update("bill_statuses", period.BillStatuses).Error; err != nil {
		return nil, err
	}
	return period, nil
}
