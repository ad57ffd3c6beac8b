package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

type UserTable struct {
	ID          int       `gorm:"primary_key" json:"id"`
	UserId      int       `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Columns []*UserTableColumn `gorm:"-" json:"columns,omitempty"`
}

type UserTableColumn struct {
	ID        int        `gorm:"primary_key" json:"id"`
	UserId    int        `gorm:"index;not null" json:"user_id"`
	TableId   int        `gorm:"index;not null" json:"table_id"`
	Name      string     `gorm:"size:100;not null" json:"name" binding:"required"`
	Position  int        `gorm:"not null;default:0" json:"position"`
	Type      ColumnType `gorm:"size:20;not null" json:"type"`
	Config    JSONMap    `gorm:"type:json" json:"config"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Cells maps column id (as a string, JSON object keys) to the cell value.
type UserTableRow struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserId    int       `gorm:"index;not null" json:"user_id"`
	TableId   int       `gorm:"index;not null" json:"table_id"`
	Cells     JSONMap   `gorm:"type:json" json:"cells"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUserTable struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type NewUserTableColumn struct {
	TableId int        `json:"table_id" binding:"required"`
	Name    string     `json:"name" binding:"required"`
	Type    ColumnType `json:"type" binding:"required"`
	Config  JSONMap    `json:"config"`
}

type NewUserTableRow struct {
	TableId int     `json:"table_id" binding:"required"`
	Cells   JSONMap `json:"cells" binding:"required"`
}

func GetUserTables(ctx context.Context) ([]*UserTable, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchAllModels[UserTable](ctx, userId)
}

// GetUserTable returns the table with its columns in position order.
func GetUserTable(ctx context.Context, id int) (*UserTable, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	table, err := utils.FetchModel[UserTable](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).
		Where("user_id = ? AND table_id = ?", userId, id).
		Order("position ASC, id ASC").Find(&table.Columns).Error
	if err != nil {
		return nil, err
	}
	return table, nil
}

func CreateUserTable(ctx context.Context, input *NewUserTable) (*UserTable, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateUnique[UserTable](ctx, userId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	table := UserTable{
		UserId:      userId,
		Name:        input.Name,
		Description: input.Description,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[UserTable](userId)
	return &table, nil
}

func UpdateUserTable(ctx context.Context, id int, input *NewUserTable) (*UserTable, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	table, err := utils.FetchModel[UserTable](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[UserTable](ctx, userId, "name", input.Name, id); err != nil {
		return nil, err
	}

	table.Name = input.Name
	table.Description = input.Description

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(table).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[UserTable](userId)
	return table, nil
}

func DeleteUserTable(ctx context.Context, id int) (*UserTable, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	table, err := utils.FetchModel[UserTable](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// rows and columns go with the table
	if err := db.WithContext(ctx).Where("table_id = ?", id).Delete(&UserTableRow{}).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Where("table_id = ?", id).Delete(&UserTableColumn{}).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(table).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[UserTable](userId)
	return table, nil
}

func CreateUserTableColumn(ctx context.Context, input *NewUserTableColumn) (*UserTableColumn, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[UserTable](ctx, userId, input.TableId); err != nil {
		return nil, errors.New("table not found")
	}
	if err := ValidateColumnConfig(input.Type, input.Config); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[UserTableColumn](ctx, userId, "table_id = ?", input.TableId)
	if err != nil {
		return nil, err
	}

	column := UserTableColumn{
		UserId:   userId,
		TableId:  input.TableId,
		Name:     input.Name,
		Position: int(count),
		Type:     input.Type,
		Config:   input.Config,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// UpdateUserTableColumn renames or reconfigures a column. The type is fixed
// after creation; changing it would invalidate existing cells.
func UpdateUserTableColumn(ctx context.Context, id int, input *NewUserTableColumn) (*UserTableColumn, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	column, err := utils.FetchModel[UserTableColumn](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if input.Type != "" && input.Type != column.Type {
		return nil, errors.New("column type cannot be changed")
	}
	if err := ValidateColumnConfig(column.Type, input.Config); err != nil {
		return nil, err
	}

	column.Name = input.Name
	column.Config = input.Config

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(column).Error; err != nil {
		return nil, err
	}
	return column, nil
}

func DeleteUserTableColumn(ctx context.Context, id int) (*UserTableColumn, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	column, err := utils.FetchModel[UserTableColumn](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(column).Error; err != nil {
		return nil, err
	}
	return column, nil
}

func GetUserTableRows(ctx context.Context, tableId int) ([]*UserTableRow, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[UserTable](ctx, userId, tableId); err != nil {
		return nil, errors.New("table not found")
	}

	db := config.GetDB()
	var results []*UserTableRow
	err := db.WithContext(ctx).
		Where("user_id = ? AND table_id = ?", userId, tableId).
		Order("id ASC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// validateCells parses every cell against its column; unknown column keys are
// rejected so a stale client cannot write orphan data.
func validateCells(columns []*UserTableColumn, cells JSONMap) (JSONMap, error) {
	byId := map[string]*UserTableColumn{}
	for _, c := range columns {
		byId[strconv.Itoa(c.ID)] = c
	}

	parsed := JSONMap{}
	for key, raw := range cells {
		column, ok := byId[key]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", key)
		}
		value, err := ParseCellValue(column.Type, column.Config, raw)
		if err != nil {
			return nil, fmt.Errorf("column %q: %s", column.Name, err.Error())
		}
		if value != nil {
			parsed[key] = value
		}
	}
	return parsed, nil
}

func CreateUserTableRow(ctx context.Context, input *NewUserTableRow) (*UserTableRow, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	table, err := GetUserTable(ctx, input.TableId)
	if err != nil {
		return nil, errors.New("table not found")
	}

	cells, err := validateCells(table.Columns, input.Cells)
	if err != nil {
		return nil, err
	}

	row := UserTableRow{
		UserId:  userId,
		TableId: input.TableId,
		Cells:   cells,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func UpdateUserTableRow(ctx context.Context, id int, input *NewUserTableRow) (*UserTableRow, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	row, err := utils.FetchModel[UserTableRow](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	table, err := GetUserTable(ctx, row.TableId)
	if err != nil {
		return nil, err
	}

	cells, err := validateCells(table.Columns, input.Cells)
	if err != nil {
		return nil, err
	}
	row.Cells = cells

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func DeleteUserTableRow(ctx context.Context, id int) (*UserTableRow, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	row, err := utils.FetchModel[UserTableRow](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ExportUserTableToExcel renders the table as an xlsx workbook and returns
// the file bytes.
func ExportUserTableToExcel(ctx context.Context, tableId int) ([]byte, string, error) {
	table, err := GetUserTable(ctx, tableId)
	if err != nil {
		return nil, "", errors.New("table not found")
	}
	rows, err := GetUserTableRows(ctx, tableId)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Sheet1"
	for colIdx, column := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		_ = f.SetCellValue(sheet, cell, column.Name)
	}

	for rowIdx, row := range rows {
		for colIdx, column := range table.Columns {
			value, ok := row.Cells[strconv.Itoa(column.ID)]
			if !ok || value == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("%s.xlsx", table.Name)
	return buf.Bytes(), filename, nil
}
