package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

type Message struct {
	ID             int         `gorm:"primary_key" json:"id"`
	UserId         int         `gorm:"index;not null" json:"user_id"`
	ConversationId int         `gorm:"index;not null" json:"conversation_id"`
	Role           MessageRole `gorm:"size:20;not null" json:"role"`
	Content        string      `gorm:"type:text;not null" json:"content"`
	PromptTokens   int         `gorm:"default:0" json:"prompt_tokens"`
	OutputTokens   int         `gorm:"default:0" json:"output_tokens"`
	IsVoice        *bool       `gorm:"not null;default:false" json:"is_voice"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMessage struct {
	ConversationId int    `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
	IsVoice        *bool  `json:"is_voice"`
}

func GetMessages(ctx context.Context, conversationId int) ([]*Message, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := utils.ValidateResourceId[Conversation](ctx, userId, conversationId); err != nil {
		return nil, errors.New("conversation not found")
	}

	db := config.GetDB()
	var results []*Message
	err := db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userId, conversationId).
		Order("id ASC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// buildGenaiHistory maps stored messages to genai content. The system prompt
// travels via SystemInstruction, so system rows are skipped here.
func buildGenaiHistory(messages []*Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role string
		switch m.Role {
		case MessageRoleUser:
			role = "user"
		case MessageRoleAssistant:
			role = "model"
		default:
			continue
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history
}

func prepareGeneration(ctx context.Context, input *NewMessage) (*Conversation, *genai.GenerativeModel, []*genai.Content, *Message, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, nil, nil, nil, errors.New("user id is required")
	}

	conversation, err := utils.FetchModel[Conversation](ctx, userId, input.ConversationId)
	if err != nil {
		return nil, nil, nil, nil, errors.New("conversation not found")
	}
	if utils.DereferencePtr(conversation.IsDriveMode) && !config.DriveModeEnabled() {
		return nil, nil, nil, nil, errors.New("drive mode is not enabled")
	}

	history, err := GetMessages(ctx, conversation.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	model, err := config.GetGenerativeModel(ctx, conversation.ModelId)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	systemPrompt := conversation.SystemPrompt
	var temperature *float32
	if conversation.AgentId != nil && *conversation.AgentId > 0 {
		agent, err := utils.FetchModel[Agent](ctx, userId, *conversation.AgentId)
		if err == nil {
			if systemPrompt == "" {
				systemPrompt = agent.SystemPrompt
			}
			temperature = agent.Temperature
		}
	}
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	if temperature != nil {
		model.SetTemperature(*temperature)
	}

	// persist the user turn before calling out; a failed generation must not
	// lose what the user typed
	userMessage := Message{
		UserId:         userId,
		ConversationId: conversation.ID,
		Role:           MessageRoleUser,
		Content:        input.Content,
		IsVoice:        input.IsVoice,
	}
	if userMessage.IsVoice == nil {
		userMessage.IsVoice = utils.NewFalse()
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&userMessage).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	return conversation, model, buildGenaiHistory(history), &userMessage, nil
}

func persistAssistantMessage(ctx context.Context, conversation *Conversation, content string, promptTokens, outputTokens int) (*Message, error) {
	assistantMessage := Message{
		UserId:         conversation.UserId,
		ConversationId: conversation.ID,
		Role:           MessageRoleAssistant,
		Content:        content,
		PromptTokens:   promptTokens,
		OutputTokens:   outputTokens,
		IsVoice:        utils.NewFalse(),
	}
	db := config.GetDB()
	// persist with a fresh deadline: the request ctx may already be cancelled
	// by a client disconnect after generation finished
	saveCtx, cancel := context.WithTimeout(utils.SetUserIdInContext(context.Background(), conversation.UserId), 10*time.Second)
	defer cancel()
	if err := db.WithContext(saveCtx).Create(&assistantMessage).Error; err != nil {
		return nil, err
	}
	_ = db.WithContext(saveCtx).Model(&Conversation{}).Where("id = ?", conversation.ID).
		Update("updated_at", time.Now()).Error
	return &assistantMessage, nil
}

// GenerateReply persists the user message, asks Gemini for a completion over
// the full conversation history, and persists the assistant reply.
// Cancelling ctx aborts the generation call.
func GenerateReply(ctx context.Context, input *NewMessage) (*Message, error) {
	conversation, model, history, _, err := prepareGeneration(ctx, input)
	if err != nil {
		return nil, err
	}

	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(input.Content))
	if err != nil {
		return nil, err
	}

	var replyText string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				replyText += string(txt)
			}
		}
	}
	if replyText == "" {
		return nil, errors.New("model returned an empty reply")
	}

	promptTokens, outputTokens := 0, 0
	if resp.UsageMetadata != nil {
		promptTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return persistAssistantMessage(ctx, conversation, replyText, promptTokens, outputTokens)
}

// GenerateReplyStream streams the completion chunk by chunk through onChunk.
// The full reply is persisted once the stream ends. A ctx cancellation (the
// UI stop button) ends the stream; whatever was generated so far is kept.
func GenerateReplyStream(ctx context.Context, input *NewMessage, onChunk func(text string) error) (*Message, error) {
	conversation, model, history, _, err := prepareGeneration(ctx, input)
	if err != nil {
		return nil, err
	}

	session := model.StartChat()
	session.History = history

	iter := session.SendMessageStream(ctx, genai.Text(input.Content))
	var full strings.Builder
	promptTokens, outputTokens := 0, 0

	for {
		resp, err := iter.Next()
		if err != nil {
			if streamDone(err) {
				break
			}
			if ctx.Err() != nil && full.Len() > 0 {
				// user hit stop: keep the partial reply
				break
			}
			return nil, err
		}
		if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		if resp.UsageMetadata != nil {
			promptTokens = int(resp.UsageMetadata.PromptTokenCount)
			outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			txt, ok := part.(genai.Text)
			if !ok {
				continue
			}
			full.WriteString(string(txt))
			if err := onChunk(string(txt)); err != nil {
				// client went away; stop streaming but keep the partial reply
				return persistAssistantMessage(ctx, conversation, full.String(), promptTokens, outputTokens)
			}
		}
	}

	if full.Len() == 0 {
		return nil, errors.New("model returned an empty reply")
	}
	return persistAssistantMessage(ctx, conversation, full.String(), promptTokens, outputTokens)
}
