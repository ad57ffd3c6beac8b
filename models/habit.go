package models

import (
	"context"
	"errors"
	"time"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

// Habit schedule is a days-of-week bitmask, bit 0 = Sunday through bit 6 =
// Saturday. 0 means no fixed days (target_per_week drives the summary).
type Habit struct {
	ID            int       `gorm:"primary_key" json:"id"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	Name          string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Schedule      int       `gorm:"not null;default:0" json:"schedule"`
	TargetPerWeek int       `gorm:"not null;default:0" json:"target_per_week"`
	IsArchived    *bool     `gorm:"not null;default:false" json:"is_archived"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHabit struct {
	Name          string `json:"name" binding:"required"`
	Schedule      *int   `json:"schedule"`
	TargetPerWeek *int   `json:"target_per_week"`
	IsArchived    *bool  `json:"is_archived"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewHabit) validate(ctx context.Context, userId int, id int) error {
	if input.Schedule != nil && (*input.Schedule < 0 || *input.Schedule > 127) {
		return errors.New("schedule must be a 7-bit days-of-week mask")
	}
	if input.TargetPerWeek != nil && (*input.TargetPerWeek < 0 || *input.TargetPerWeek > 7) {
		return errors.New("target_per_week must be between 0 and 7")
	}
	if err := utils.ValidateUnique[Habit](ctx, userId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

// ScheduledDaysPerWeek counts the set bits in the schedule mask.
func (h *Habit) ScheduledDaysPerWeek() int {
	count := 0
	for day := 0; day < 7; day++ {
		if h.Schedule&(1<<day) != 0 {
			count++
		}
	}
	return count
}

// WeeklyTarget resolves the effective target: explicit target wins, then the
// schedule mask, then daily.
func (h *Habit) WeeklyTarget() int {
	if h.TargetPerWeek > 0 {
		return h.TargetPerWeek
	}
	if scheduled := h.ScheduledDaysPerWeek(); scheduled > 0 {
		return scheduled
	}
	return 7
}

func GetHabits(ctx context.Context, includeArchived bool) ([]*Habit, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if !includeArchived {
		dbCtx = dbCtx.Where("is_archived = ?", false)
	}

	var results []*Habit
	if err := dbCtx.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetHabit(ctx context.Context, id int) (*Habit, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Habit](ctx, userId, id)
}

func CreateHabit(ctx context.Context, input *NewHabit) (*Habit, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	habit := Habit{
		UserId:     userId,
		Name:       input.Name,
		IsArchived: utils.NewFalse(),
	}
	if input.Schedule != nil {
		habit.Schedule = *input.Schedule
	}
	if input.TargetPerWeek != nil {
		habit.TargetPerWeek = *input.TargetPerWeek
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&habit).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Habit](userId)
	return &habit, nil
}

func UpdateHabit(ctx context.Context, id int, input *NewHabit) (*Habit, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	habit, err := utils.FetchModel[Habit](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	habit.Name = input.Name
	if input.Schedule != nil {
		habit.Schedule = *input.Schedule
	}
	if input.TargetPerWeek != nil {
		habit.TargetPerWeek = *input.TargetPerWeek
	}
	if input.IsArchived != nil {
		habit.IsArchived = input.IsArchived
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(habit).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Habit](userId)
	return habit, nil
}

func DeleteHabit(ctx context.Context, id int) (*Habit, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	habit, err := utils.FetchModel[Habit](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// entries go with the habit
	if err := db.WithContext(ctx).Where("habit_id = ?", id).Delete(&HabitEntry{}).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(habit).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Habit](userId)
	return habit, nil
}
