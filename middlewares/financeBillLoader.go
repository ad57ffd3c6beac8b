package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"github.com/ventiam/ventiam_backend/models"
)

type financeBillReader struct {
	db *gorm.DB
}

func (r *financeBillReader) getFinanceBills(ctx context.Context, ids []int) []*dataloader.Result[*models.FinanceBill] {
	var results []models.FinanceBill

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.FinanceBill](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetFinanceBill(ctx context.Context, id int) (*models.FinanceBill, error) {
	loaders := For(ctx)
	return loaders.FinanceBillLoader.Load(ctx, id)()
}

type accountBillReader struct {
	db *gorm.DB
}

func (r *accountBillReader) GetAccountBills(ctx context.Context, ids []int) []*dataloader.Result[[]*models.FinanceBill] {
	var results []models.FinanceBill
	err := r.db.WithContext(ctx).Where("billing_account_id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[[]*models.FinanceBill](len(ids), err)
	}
	return generateLoaderArrayResults(results, ids)
}

// GetAccountBills returns the bills charged to one billing account
func GetAccountBills(ctx context.Context, accountId int) ([]*models.FinanceBill, error) {
	loaders := For(ctx)
	return loaders.accountBillLoader.Load(ctx, accountId)()
}
