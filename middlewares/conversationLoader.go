package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"github.com/ventiam/ventiam_backend/models"
)

type conversationReader struct {
	db *gorm.DB
}

func (r *conversationReader) getConversations(ctx context.Context, ids []int) []*dataloader.Result[*models.Conversation] {
	var results []models.Conversation

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Conversation](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetConversationById(ctx context.Context, id int) (*models.Conversation, error) {
	loaders := For(ctx)
	return loaders.ConversationLoader.Load(ctx, id)()
}

type agentReader struct {
	db *gorm.DB
}

func (r *agentReader) getAgents(ctx context.Context, ids []int) []*dataloader.Result[*models.Agent] {
	var results []models.Agent

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Agent](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetAgentById(ctx context.Context, id int) (*models.Agent, error) {
	loaders := For(ctx)
	return loaders.AgentLoader.Load(ctx, id)()
}
