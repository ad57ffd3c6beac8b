package models

import (
	"context"
	"errors"
	"time"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

// Agent is a reusable chat persona: a system prompt plus generation settings.
type Agent struct {
	ID           int       `gorm:"primary_key" json:"id"`
	UserId       int       `gorm:"index;not null" json:"user_id"`
	Name         string    `gorm:"size:100;not null" json:"name" binding:"required"`
	SystemPrompt string    `gorm:"type:text" json:"system_prompt"`
	Temperature  *float32  `json:"temperature"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAgent struct {
	Name         string   `json:"name" binding:"required"`
	SystemPrompt string   `json:"system_prompt"`
	Temperature  *float32 `json:"temperature"`
	IsActive     *bool    `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewAgent) validate(ctx context.Context, userId int, id int) error {
	if input.Temperature != nil && (*input.Temperature < 0 || *input.Temperature > 2) {
		return errors.New("temperature must be between 0 and 2")
	}
	if err := utils.ValidateUnique[Agent](ctx, userId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func GetAgents(ctx context.Context) ([]*Agent, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchAllModels[Agent](ctx, userId)
}

func CreateAgent(ctx context.Context, input *NewAgent) (*Agent, error) {
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

	agent := Agent{
		UserId:       userId,
		Name:         input.Name,
		SystemPrompt: input.SystemPrompt,
		Temperature:  input.Temperature,
		IsActive:     isActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&agent).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Agent](userId)
	return &agent, nil
}

func UpdateAgent(ctx context.Context, id int, input *NewAgent) (*Agent, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	agent, err := utils.FetchModel[Agent](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	agent.Name = input.Name
	agent.SystemPrompt = input.SystemPrompt
	agent.Temperature = input.Temperature
	if input.IsActive != nil {
		agent.IsActive = input.IsActive
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(agent).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Agent](userId)
	return agent, nil
}

func DeleteAgent(ctx context.Context, id int) (*Agent, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	agent, err := utils.FetchModel[Agent](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Conversation](ctx, userId, "agent_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("agent is referenced by conversations")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(agent).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Agent](userId)
	return agent, nil
}
