package models

import (
	"context"
	"errors"
	"time"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

type Conversation struct {
	ID           int       `gorm:"primary_key" json:"id"`
	UserId       int       `gorm:"index;not null" json:"user_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	ModelId      string    `gorm:"size:100" json:"model_id"`
	AgentId      *int      `gorm:"index" json:"agent_id"`
	SystemPrompt string    `gorm:"type:text" json:"system_prompt"`
	IsArchived   *bool     `gorm:"not null;default:false" json:"is_archived"`
	IsDriveMode  *bool     `gorm:"not null;default:false" json:"is_drive_mode"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	// attached on demand, not a gorm relation
	Agent *Agent `gorm:"-" json:"agent,omitempty"`
}

type NewConversation struct {
	Title        string `json:"title"`
	ModelId      string `json:"model_id"`
	AgentId      *int   `json:"agent_id"`
	SystemPrompt string `json:"system_prompt"`
	IsDriveMode  *bool  `json:"is_drive_mode"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewConversation) validate(ctx context.Context, userId int, _ int) error {
	if input.AgentId != nil && *input.AgentId > 0 {
		if err := utils.ValidateResourceId[Agent](ctx, userId, *input.AgentId); err != nil {
			return errors.New("agent not found")
		}
	}
	if input.IsDriveMode != nil && *input.IsDriveMode && !config.DriveModeEnabled() {
		return errors.New("drive mode is not enabled")
	}
	return nil
}

func GetConversations(ctx context.Context, includeArchived bool) ([]*Conversation, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if !includeArchived {
		dbCtx = dbCtx.Where("is_archived = ?", false)
	}

	var results []*Conversation
	if err := dbCtx.Order("updated_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetConversation(ctx context.Context, id int) (*Conversation, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Conversation](ctx, userId, id)
}

func CreateConversation(ctx context.Context, input *NewConversation) (*Conversation, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = "New conversation"
	}

	conversation := Conversation{
		UserId:       userId,
		Title:        title,
		ModelId:      input.ModelId,
		AgentId:      input.AgentId,
		SystemPrompt: input.SystemPrompt,
		IsArchived:   utils.NewFalse(),
		IsDriveMode:  input.IsDriveMode,
	}
	if conversation.IsDriveMode == nil {
		conversation.IsDriveMode = utils.NewFalse()
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func UpdateConversation(ctx context.Context, id int, input *NewConversation) (*Conversation, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	conversation, err := utils.FetchModel[Conversation](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	if input.Title != "" {
		conversation.Title = input.Title
	}
	if input.ModelId != "" {
		conversation.ModelId = input.ModelId
	}
	conversation.AgentId = input.AgentId
	conversation.SystemPrompt = input.SystemPrompt
	if input.IsDriveMode != nil {
		conversation.IsDriveMode = input.IsDriveMode
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

func ArchiveConversation(ctx context.Context, id int, archived bool) (*Conversation, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	conversation, err := utils.FetchModel[Conversation](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(conversation).Update("is_archived", archived).Error; err != nil {
		return nil, err
	}
	conversation.IsArchived = &archived
	return conversation, nil
}

func DeleteConversation(ctx context.Context, id int) (*Conversation, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	conversation, err := utils.FetchModel[Conversation](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// messages go with the conversation
	if err := db.WithContext(ctx).Where("conversation_id = ?", id).Delete(&Message{}).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}
