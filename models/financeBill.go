package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
	"gorm.io/gorm"
)

type FinanceBill struct {
	ID               int             `gorm:"primary_key" json:"id"`
	UserId           int             `gorm:"index;not null" json:"user_id"`
	CompanyName      string          `gorm:"size:255;not null" json:"company_name" binding:"required"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	ChargeCycle      ChargeCycle     `gorm:"size:20;not null" json:"charge_cycle"`
	MultiplierType   MultiplierType  `gorm:"size:20;not null;default:monthly" json:"multiplier_type"`
	NextDueDate      *time.Time      `json:"next_due_date"`
	PaymentDay       int             `gorm:"default:0" json:"payment_day"`
	BillingAccountId *int            `gorm:"index" json:"billing_account_id"`
	Category         string          `gorm:"size:100" json:"category"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	// attached on demand, not a gorm relation
	BillingAccount *FinanceAccount `gorm:"-" json:"billing_account,omitempty"`
}

type NewFinanceBill struct {
	CompanyName      string          `json:"company_name" binding:"required"`
	Amount           decimal.Decimal `json:"amount"`
	ChargeCycle      ChargeCycle     `json:"charge_cycle" binding:"required"`
	MultiplierType   MultiplierType  `json:"multiplier_type"`
	NextDueDate      *time.Time      `json:"next_due_date"`
	PaymentDay       int             `json:"payment_day"`
	BillingAccountId *int            `json:"billing_account_id"`
	Category         string          `json:"category"`
}

// validate input for both create & update. (id = 0 for create)
// Bad cycles are rejected here; the cost calculator stays forgiving for
// legacy rows that were written before this check existed.
func (input *NewFinanceBill) validate(ctx context.Context, userId int, _ int) error {
	if !input.ChargeCycle.IsValid() {
		return errors.New("invalid charge_cycle")
	}
	if input.MultiplierType != "" && !input.MultiplierType.IsValid() {
		return errors.New("invalid multiplier_type")
	}
	if input.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if input.PaymentDay < 0 || input.PaymentDay > 6 {
		return errors.New("payment_day must be 0-6")
	}
	if input.BillingAccountId != nil && *input.BillingAccountId > 0 {
		if err := utils.ValidateResourceId[FinanceAccount](ctx, userId, *input.BillingAccountId); err != nil {
			return errors.New("billing account not found")
		}
	}
	return nil
}

// billReminderPayload is the snapshot of a bill carried on its outbox events.
// Consumers must not read bill state back from the table; the row may be gone
// by the time a delete event is delivered.
func billReminderPayload(bill *FinanceBill) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"bill_id":       bill.ID,
		"company_name":  bill.CompanyName,
		"amount":        bill.Amount,
		"charge_cycle":  bill.ChargeCycle,
		"next_due_date": bill.NextDueDate,
		"category":      bill.Category,
	})
}

// enqueueBillEvent writes the outbox row for a bill change inside tx so the
// reminder event commits or rolls back together with the bill itself.
func enqueueBillEvent(ctx context.Context, tx *gorm.DB, bill *FinanceBill, action string) error {
	payload, err := billReminderPayload(bill)
	if err != nil {
		return err
	}
	return EnqueueBillReminder(ctx, tx, bill, action, payload)
}

func GetFinanceBills(ctx context.Context) ([]*FinanceBill, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchAllModels[FinanceBill](ctx, userId)
}

func CreateFinanceBill(ctx context.Context, input *NewFinanceBill) (*FinanceBill, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	multiplierType := input.MultiplierType
	if multiplierType == "" {
		multiplierType = MultiplierTypeMonthly
	}

	bill := FinanceBill{
		UserId:           userId,
		CompanyName:      input.CompanyName,
		Amount:           input.Amount,
		ChargeCycle:      input.ChargeCycle,
		MultiplierType:   multiplierType,
		NextDueDate:      input.NextDueDate,
		PaymentDay:       input.PaymentDay,
		BillingAccountId: input.BillingAccountId,
		Category:         input.Category,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bill).Error; err != nil {
			return err
		}
		return enqueueBillEvent(ctx, tx, &bill, "bill.created")
	})
	if err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[FinanceBill](userId)
	return &bill, nil
}

func UpdateFinanceBill(ctx context.Context, id int, input *NewFinanceBill) (*FinanceBill, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	bill, err := utils.FetchModel[FinanceBill](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	bill.CompanyName = input.CompanyName
	bill.Amount = input.Amount
	bill.ChargeCycle = input.ChargeCycle
	if input.MultiplierType != "" {
		bill.MultiplierType = input.MultiplierType
	}
	bill.NextDueDate = input.NextDueDate
	bill.PaymentDay = input.PaymentDay
	bill.BillingAccountId = input.BillingAccountId
	bill.Category = input.Category

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(bill).Error; err != nil {
			return err
		}
		return enqueueBillEvent(ctx, tx, bill, "bill.updated")
	})
	if err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[FinanceBill](userId)
	return bill, nil
}

func DeleteFinanceBill(ctx context.Context, id int) (*FinanceBill, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	bill, err := utils.FetchModel[FinanceBill](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(bill).Error; err != nil {
			return err
		}
		return enqueueBillEvent(ctx, tx, bill, "bill.deleted")
	})
	if err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[FinanceBill](userId)
	return bill, nil
}
