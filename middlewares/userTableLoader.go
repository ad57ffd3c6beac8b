package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"github.com/ventiam/ventiam_backend/models"
)

type userTableReader struct {
	db *gorm.DB
}

func (r *userTableReader) getUserTables(ctx context.Context, ids []int) []*dataloader.Result[*models.UserTable] {
	var results []models.UserTable

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.UserTable](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetUserTableById(ctx context.Context, id int) (*models.UserTable, error) {
	loaders := For(ctx)
	return loaders.UserTableLoader.Load(ctx, id)()
}

type tableColumnReader struct {
	db *gorm.DB
}

func (r *tableColumnReader) GetTableColumns(ctx context.Context, ids []int) []*dataloader.Result[[]*models.UserTableColumn] {
	var results []models.UserTableColumn
	err := r.db.WithContext(ctx).Where("table_id IN ?", ids).Order("position ASC").Find(&results).Error
	if err != nil {
		return handleError[[]*models.UserTableColumn](len(ids), err)
	}
	return generateLoaderArrayResults(results, ids)
}

func GetTableColumns(ctx context.Context, tableId int) ([]*models.UserTableColumn, error) {
	loaders := For(ctx)
	return loaders.tableColumnLoader.Load(ctx, tableId)()
}
