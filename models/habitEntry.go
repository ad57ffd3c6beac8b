package models

import (
	"context"
	"errors"
	"time"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
	"gorm.io/gorm/clause"
)

type HabitEntry struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserId    int       `gorm:"index;not null" json:"user_id"`
	HabitId   int       `gorm:"not null;uniqueIndex:idx_habit_entry_day" json:"habit_id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_habit_entry_day" json:"date"`
	Completed *bool     `gorm:"not null;default:true" json:"completed"`
	Note      string    `gorm:"size:255" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHabitEntry struct {
	HabitId   int    `json:"habit_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Completed *bool  `json:"completed"`
	Note      string `json:"note"`
}

// UpsertHabitEntry records (or re-records) a habit for a day. One entry per
// habit per day; a second call for the same day overwrites.
func UpsertHabitEntry(ctx context.Context, input *NewHabitEntry) (*HabitEntry, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[Habit](ctx, userId, input.HabitId); err != nil {
		return nil, errors.New("habit not found")
	}

	date, err := utils.ParseDateString(input.Date)
	if err != nil {
		return nil, errors.New("invalid date")
	}

	completed := input.Completed
	if completed == nil {
		completed = utils.NewTrue()
	}

	entry := HabitEntry{
		UserId:    userId,
		HabitId:   input.HabitId,
		Date:      date,
		Completed: completed,
		Note:      input.Note,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "note", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func DeleteHabitEntry(ctx context.Context, habitId int, dateStr string) error {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[Habit](ctx, userId, habitId); err != nil {
		return errors.New("habit not found")
	}
	date, err := utils.ParseDateString(dateStr)
	if err != nil {
		return errors.New("invalid date")
	}

	db := config.GetDB()
	return db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ? AND date = ?", userId, habitId, date).
		Delete(&HabitEntry{}).Error
}

func GetHabitEntries(ctx context.Context, habitId int, from, to *time.Time) ([]*HabitEntry, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[Habit](ctx, userId, habitId); err != nil {
		return nil, errors.New("habit not found")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ? AND habit_id = ?", userId, habitId)
	if from != nil {
		dbCtx = dbCtx.Where("date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("date <= ?", *to)
	}

	var results []*HabitEntry
	if err := dbCtx.Order("date ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type HabitWeekSummary struct {
	HabitId   int    `json:"habit_id"`
	Name      string `json:"name"`
	Target    int    `json:"target"`
	Completed int    `json:"completed"`
	OnTrack   bool   `json:"on_track"`
}

// GetWeeklySummary reports completions per habit for the week containing ref
// (weeks run Sunday through Saturday, matching the schedule mask).
func GetWeeklySummary(ctx context.Context, ref time.Time) ([]*HabitWeekSummary, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	habits, err := GetHabits(ctx, false)
	if err != nil {
		return nil, err
	}

	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 6)

	db := config.GetDB()
	summaries := make([]*HabitWeekSummary, 0, len(habits))
	for _, habit := range habits {
		var completed int64
		err := db.WithContext(ctx).Model(&HabitEntry{}).
			Where("user_id = ? AND habit_id = ? AND completed = ? AND date BETWEEN ? AND ?",
				userId, habit.ID, true, weekStart, weekEnd).
			Count(&completed).Error
		if err != nil {
			return nil, err
		}

		target := habit.WeeklyTarget()
		summaries = append(summaries, &HabitWeekSummary{
			HabitId:   habit.ID,
			Name:      habit.Name,
			Target:    target,
			Completed: int(completed),
			OnTrack:   int(completed) >= target,
		})
	}
	return summaries, nil
}
