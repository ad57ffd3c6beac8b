package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
	"gorm.io/gorm/clause"
)

// HealthMetric rows are unique per (user, type, source, recorded_at) so that
// re-running an import never duplicates readings.
type HealthMetric struct {
	ID         int             `gorm:"primary_key" json:"id"`
	UserId     int             `gorm:"not null;uniqueIndex:idx_health_reading" json:"user_id"`
	MetricType MetricType      `gorm:"size:20;not null;uniqueIndex:idx_health_reading" json:"metric_type"`
	Source     string          `gorm:"size:50;not null;default:manual;uniqueIndex:idx_health_reading" json:"source"`
	RecordedAt time.Time       `gorm:"not null;uniqueIndex:idx_health_reading" json:"recorded_at"`
	Value      decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"value"`
	Unit       string          `gorm:"size:20" json:"unit"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHealthMetric struct {
	MetricType MetricType      `json:"metric_type" binding:"required"`
	RecordedAt time.Time       `json:"recorded_at" binding:"required"`
	Value      decimal.Decimal `json:"value"`
	Unit       string          `json:"unit"`
	Source     string          `json:"source"`
}

func (input *NewHealthMetric) validate() error {
	if !input.MetricType.IsValid() {
		return errors.New("invalid metric type")
	}
	if input.Value.IsNegative() {
		return errors.New("value must not be negative")
	}
	return nil
}

// UpsertHealthMetric writes a reading, overwriting an existing one for the
// same (type, source, timestamp).
func UpsertHealthMetric(ctx context.Context, input *NewHealthMetric) (*HealthMetric, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = "manual"
	}

	metric := HealthMetric{
		UserId:     userId,
		MetricType: input.MetricType,
		Source:     source,
		RecordedAt: input.RecordedAt.UTC(),
		Value:      input.Value,
		Unit:       input.Unit,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "metric_type"}, {Name: "source"}, {Name: "recorded_at"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "unit", "updated_at"}),
	}).Create(&metric).Error
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

// UpsertHealthMetricsForUser is the worker-side bulk path: no request context,
// the job carries the user id. Returns how many rows were written.
func UpsertHealthMetricsForUser(ctx context.Context, userId int, metrics []*HealthMetric) (int, error) {
	if len(metrics) == 0 {
		return 0, nil
	}
	for _, m := range metrics {
		m.UserId = userId
		m.RecordedAt = m.RecordedAt.UTC()
		if m.Source == "" {
			m.Source = "import"
		}
	}

	db := config.GetDB()
	err := db.WithContext(utils.SetUserIdInContext(ctx, userId)).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "metric_type"}, {Name: "source"}, {Name: "recorded_at"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "unit", "updated_at"}),
	}).Create(&metrics).Error
	if err != nil {
		return 0, err
	}
	return len(metrics), nil
}

func GetHealthMetrics(ctx context.Context, metricType *MetricType, from, to *time.Time) ([]*HealthMetric, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if metricType != nil {
		if !metricType.IsValid() {
			return nil, errors.New("invalid metric type")
		}
		dbCtx = dbCtx.Where("metric_type = ?", *metricType)
	}
	if from != nil {
		dbCtx = dbCtx.Where("recorded_at >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("recorded_at <= ?", *to)
	}

	var results []*HealthMetric
	if err := dbCtx.Order("recorded_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type HealthMetricSummary struct {
	MetricType MetricType      `json:"metric_type"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	Average    decimal.Decimal `json:"average"`
	Latest     *time.Time      `json:"latest"`
}

// GetHealthSummary aggregates per metric type over a date range.
func GetHealthSummary(ctx context.Context, from, to *time.Time) ([]*HealthMetricSummary, error) {
	metrics, err := GetHealthMetrics(ctx, nil, from, to)
	if err != nil {
		return nil, err
	}

	byType := map[MetricType]*HealthMetricSummary{}
	order := []MetricType{}
	for _, m := range metrics {
		summary, ok := byType[m.MetricType]
		if !ok {
			summary = &HealthMetricSummary{MetricType: m.MetricType}
			byType[m.MetricType] = summary
			order = append(order, m.MetricType)
		}
		summary.Count++
		summary.Total = summary.Total.Add(m.Value)
		recordedAt := m.RecordedAt
		if summary.Latest == nil || recordedAt.After(*summary.Latest) {
			summary.Latest = &recordedAt
		}
	}

	results := make([]*HealthMetricSummary, 0, len(order))
	for _, t := range order {
		summary := byType[t]
		if summary.Count > 0 {
			summary.Average = summary.Total.Div(decimal.NewFromInt(int64(summary.Count))).Round(2)
		}
		summary.Total = summary.Total.Round(2)
		results = append(results, summary)
	}
	return results, nil
}
