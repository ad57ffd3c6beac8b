package models

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ventiam/ventiam_backend/config"
	"google.golang.org/api/iterator"
	"gorm.io/gorm/clause"
)

// streamDone reports whether a genai iterator error means normal exhaustion.
// The SDK's iterators end with iterator.Done; raw stream readers end with EOF.
func streamDone(err error) bool {
	return errors.Is(err, iterator.Done) || errors.Is(err, io.EOF)
}

// AiModel is a global catalog row (not user-scoped). Capability flags for
// known models are manually curated; RefreshCatalog only fills them in for
// newly discovered models.
type AiModel struct {
	ID                 int       `gorm:"primary_key" json:"id"`
	ModelId            string    `gorm:"size:150;not null;unique" json:"model_id"`
	Provider           string    `gorm:"size:50;not null;default:google" json:"provider"`
	DisplayName        string    `gorm:"size:150" json:"display_name"`
	MultiModal         bool      `json:"multi_modal"`
	CanSearch          bool      `json:"can_search"`
	CanGenerateImages  bool      `json:"can_generate_images"`
	IsAdvancedReasoner bool      `json:"is_advanced_reasoner"`
	SupportsReasoning  bool      `json:"supports_reasoning"`
	SupportsDriveMode  bool      `json:"supports_drive_mode"`
	ContextWindow      int       `json:"context_window"`
	DiscoveredAt       time.Time `json:"discovered_at"`
	IsActive           bool      `gorm:"index;default:true" json:"is_active"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ModelCapabilities struct {
	MultiModal         bool
	CanSearch          bool
	CanGenerateImages  bool
	IsAdvancedReasoner bool
	SupportsReasoning  bool
	SupportsDriveMode  bool
}

var geminiExpAdvanced = regexp.MustCompile(`exp.*(pro|advanced)`)

// ApplyCapabilityHeuristics guesses capability flags for a newly discovered
// model from its id and display name. Best-effort: curated rows override this.
func ApplyCapabilityHeuristics(modelId, displayName string) ModelCapabilities {
	id := strings.ToLower(modelId)
	name := strings.ToLower(displayName)
	if name == "" {
		name = id
	}

	caps := ModelCapabilities{SupportsReasoning: true}

	if strings.Contains(id, "gemini") || strings.Contains(name, "gemini") {
		caps.MultiModal = true
		if strings.Contains(id, "pro") || strings.Contains(id, "ultra") ||
			geminiExpAdvanced.MatchString(id) ||
			strings.Contains(id, "gemini-1.5") || strings.Contains(id, "gemini-2.5") {
			caps.IsAdvancedReasoner = true
		}
		if strings.Contains(id, "flash") && !(strings.Contains(id, "2.5") || strings.Contains(id, "exp")) {
			caps.IsAdvancedReasoner = false
		}
		if strings.Contains(id, "1.5") || strings.Contains(id, "2.0") || strings.Contains(id, "2.5") ||
			strings.Contains(id, "exp") || strings.Contains(id, "preview") {
			caps.CanSearch = true
			if strings.Contains(id, "2.5") || strings.Contains(id, "pro") {
				caps.CanGenerateImages = true
			}
		}
		// flash-tier models respond fast enough for hands-free voice turns
		caps.SupportsDriveMode = strings.Contains(id, "flash")
	}

	if strings.Contains(id, "imagen") {
		caps.MultiModal = true
		caps.CanGenerateImages = true
		caps.SupportsReasoning = false
	}

	if !strings.Contains(id, "gemini") && !strings.Contains(id, "imagen") {
		caps.SupportsReasoning = false
	}
	if !caps.SupportsReasoning {
		caps.IsAdvancedReasoner = false
	}
	return caps
}

func GetAiModels(ctx context.Context, activeOnly bool) ([]*AiModel, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}

	var results []*AiModel
	if err := dbCtx.Order("model_id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type CatalogRefreshResult struct {
	Discovered  int `json:"discovered"`
	Updated     int `json:"updated"`
	Deactivated int `json:"deactivated"`
}

// RefreshCatalog lists available models from the Gemini API and reconciles
// the catalog: new models get heuristic flags, known models keep their
// (possibly hand-edited) flags, models that disappeared are deactivated.
func RefreshCatalog(ctx context.Context) (*CatalogRefreshResult, error) {
	client, err := config.GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var existing []*AiModel
	if err := db.WithContext(ctx).Where("provider = ?", "google").Find(&existing).Error; err != nil {
		return nil, err
	}
	existingByModelId := map[string]*AiModel{}
	for _, m := range existing {
		existingByModelId[m.ModelId] = m
	}

	result := CatalogRefreshResult{}
	seen := map[string]bool{}
	now := time.Now().UTC()

	iter := client.ListModels(ctx)
	for {
		info, err := iter.Next()
		if err != nil {
			if streamDone(err) {
				break
			}
			return nil, err
		}
		modelId := strings.TrimPrefix(info.Name, "models/")
		seen[modelId] = true

		if known, ok := existingByModelId[modelId]; ok {
			// known model: refresh metadata, preserve curated flags
			updates := map[string]interface{}{
				"display_name":   info.DisplayName,
				"context_window": int(info.InputTokenLimit),
				"is_active":      true,
			}
			if err := db.WithContext(ctx).Model(&AiModel{}).Where("id = ?", known.ID).Updates(updates).Error; err != nil {
				return nil, err
			}
			result.Updated++
			continue
		}

		caps := ApplyCapabilityHeuristics(modelId, info.DisplayName)
		row := AiModel{
			ModelId:            modelId,
			Provider:           "google",
			DisplayName:        info.DisplayName,
			MultiModal:         caps.MultiModal,
			CanSearch:          caps.CanSearch,
			CanGenerateImages:  caps.CanGenerateImages,
			IsAdvancedReasoner: caps.IsAdvancedReasoner,
			SupportsReasoning:  caps.SupportsReasoning,
			SupportsDriveMode:  caps.SupportsDriveMode,
			ContextWindow:      int(info.InputTokenLimit),
			DiscoveredAt:       now,
			IsActive:           true,
		}
		err = db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "model_id"}},
			UpdateAll: true,
		}).Create(&row).Error
		if err != nil {
			return nil, err
		}
		result.Discovered++
	}

	// models that disappeared from the API go inactive, never deleted
	for _, m := range existing {
		if seen[m.ModelId] || !m.IsActive {
			continue
		}
		if err := db.WithContext(ctx).Model(&AiModel{}).Where("id = ?", m.ID).Update("is_active", false).Error; err != nil {
			return nil, err
		}
		result.Deactivated++
	}

	return &result, nil
}
