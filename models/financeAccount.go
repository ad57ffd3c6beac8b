package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

type FinanceAccount struct {
	ID          int             `gorm:"primary_key" json:"id"`
	UserId      int             `gorm:"index;not null" json:"user_id"`
	Name        string          `gorm:"size:255;not null" json:"name" binding:"required"`
	AccountType string          `gorm:"size:100" json:"account_type"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	// attached on demand, not a gorm relation
	Bills []*FinanceBill `gorm:"-" json:"bills,omitempty"`
}

type NewFinanceAccount struct {
	Name        string          `json:"name" binding:"required"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    *bool           `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewFinanceAccount) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[FinanceAccount](ctx, userId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func GetFinanceAccounts(ctx context.Context) ([]*FinanceAccount, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchAllModels[FinanceAccount](ctx, userId)
}

func CreateFinanceAccount(ctx context.Context, input *NewFinanceAccount) (*FinanceAccount, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	account := FinanceAccount{
		UserId:      userId,
		Name:        input.Name,
		AccountType: input.AccountType,
		Balance:     input.Balance,
		IsActive:    isActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[FinanceAccount](userId)
	return &account, nil
}

func UpdateFinanceAccount(ctx context.Context, id int, input *NewFinanceAccount) (*FinanceAccount, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	account, err := utils.FetchModel[FinanceAccount](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	account.Name = input.Name
	account.AccountType = input.AccountType
	account.Balance = input.Balance
	if input.IsActive != nil {
		account.IsActive = input.IsActive
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(account).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[FinanceAccount](userId)
	return account, nil
}

func DeleteFinanceAccount(ctx context.Context, id int) (*FinanceAccount, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	account, err := utils.FetchModel[FinanceAccount](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	// bills still charging against this account block deletion
	count, err := utils.ResourceCountWhere[FinanceBill](ctx, userId, "billing_account_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("account is referenced by bills")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(account).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[FinanceAccount](userId)
	return account, nil
}
