package config

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

var (
	geminiClient   *genai.Client
	geminiClientMu sync.Mutex
)

// GetGeminiClient returns the shared Gemini API client, creating it on first use.
// Requires GEMINI_API_KEY.
func GetGeminiClient(ctx context.Context) (*genai.Client, error) {
	geminiClientMu.Lock()
	defer geminiClientMu.Unlock()

	if geminiClient != nil {
		return geminiClient, nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	geminiClient = client
	return geminiClient, nil
}

// GetGenerativeModel returns a model handle by id, falling back to the default.
func GetGenerativeModel(ctx context.Context, modelId string) (*genai.GenerativeModel, error) {
	client, err := GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}
	if modelId == "" {
		modelId = DefaultGeminiModel
	}
	return client.GenerativeModel(modelId), nil
}
