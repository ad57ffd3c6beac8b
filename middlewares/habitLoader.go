package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"github.com/ventiam/ventiam_backend/models"
)

type habitReader struct {
	db *gorm.DB
}

func (r *habitReader) getHabits(ctx context.Context, ids []int) []*dataloader.Result[*models.Habit] {
	var results []models.Habit

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Habit](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetHabitById(ctx context.Context, id int) (*models.Habit, error) {
	loaders := For(ctx)
	return loaders.HabitLoader.Load(ctx, id)()
}

type habitEntryReader struct {
	db *gorm.DB
}

func (r *habitEntryReader) GetHabitEntries(ctx context.Context, ids []int) []*dataloader.Result[[]*models.HabitEntry] {
	var results []models.HabitEntry
	err := r.db.WithContext(ctx).Where("habit_id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[[]*models.HabitEntry](len(ids), err)
	}
	return generateLoaderArrayResults(results, ids)
}

func GetHabitEntriesByHabit(ctx context.Context, habitId int) ([]*models.HabitEntry, error) {
	loaders := For(ctx)
	return loaders.habitEntryLoader.Load(ctx, habitId)()
}
