package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"github.com/ventiam/ventiam_backend/models"
)

type financeAccountReader struct {
	db *gorm.DB
}

func (r *financeAccountReader) getFinanceAccounts(ctx context.Context, ids []int) []*dataloader.Result[*models.FinanceAccount] {
	var results []models.FinanceAccount

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.FinanceAccount](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

// GetFinanceAccount returns single account by id efficiently
func GetFinanceAccount(ctx context.Context, id int) (*models.FinanceAccount, error) {
	loaders := For(ctx)
	return loaders.FinanceAccountLoader.Load(ctx, id)()
}

// GetFinanceAccounts returns many accounts by ids efficiently
func GetFinanceAccounts(ctx context.Context, ids []int) ([]*models.FinanceAccount, []error) {
	loaders := For(ctx)
	return loaders.FinanceAccountLoader.LoadMany(ctx, ids)()
}
