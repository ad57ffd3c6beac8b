package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
)

// JSONMap is a schemaless JSON column for preference blobs.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for JSONMap")
	}
}

type UserProfile struct {
	ID             int       `gorm:"primary_key" json:"id"`
	UserId         int       `gorm:"index;not null;unique" json:"user_id"`
	DisplayName    string    `gorm:"size:100" json:"display_name"`
	AvatarUrl      string    `json:"avatar_url"`
	Timezone       string    `gorm:"size:64;default:UTC" json:"timezone"`
	Phone          string    `gorm:"size:20" json:"phone"`
	DrivePrefs     JSONMap   `gorm:"type:json" json:"drive_prefs"`
	SearchPrefs    JSONMap   `gorm:"type:json" json:"search_prefs"`
	DefaultModelId *int      `json:"default_model_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUserProfile struct {
	DisplayName    string  `json:"display_name"`
	AvatarUrl      string  `json:"avatar_url"`
	Timezone       string  `json:"timezone"`
	Phone          string  `json:"phone"`
	DrivePrefs     JSONMap `json:"drive_prefs"`
	SearchPrefs    JSONMap `json:"search_prefs"`
	DefaultModelId *int    `json:"default_model_id"`
}

func (input *NewUserProfile) validate(ctx context.Context, userId int) error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return errors.New("invalid timezone")
		}
	}
	if input.DefaultModelId != nil && *input.DefaultModelId > 0 {
		count, err := utils.ResourceCountWhere[AiModel](ctx, 0, "id = ?", *input.DefaultModelId)
		if err != nil {
			return err
		}
		if count == 0 {
			return errors.New("model not found")
		}
	}
	return nil
}

func GetProfile(ctx context.Context) (*UserProfile, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	var profile UserProfile
	err := db.WithContext(ctx).Where("user_id = ?", userId).First(&profile).Error
	if err != nil {
		// lazily create an empty profile on first read
		profile = UserProfile{UserId: userId, Timezone: "UTC", DrivePrefs: JSONMap{}, SearchPrefs: JSONMap{}}
		if cerr := db.WithContext(ctx).Create(&profile).Error; cerr != nil {
			return nil, cerr
		}
	}
	return &profile, nil
}

func UpdateProfile(ctx context.Context, input *NewUserProfile) (*UserProfile, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	profile, err := GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	profile.DisplayName = input.DisplayName
	profile.AvatarUrl = input.AvatarUrl
	if input.Timezone != "" {
		profile.Timezone = input.Timezone
	}
	profile.Phone = input.Phone
	if input.DrivePrefs != nil {
		profile.DrivePrefs = input.DrivePrefs
	}
	if input.SearchPrefs != nil {
		profile.SearchPrefs = input.SearchPrefs
	}
	profile.DefaultModelId = input.DefaultModelId

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
