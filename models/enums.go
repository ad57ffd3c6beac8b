package models

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleConsumer UserRole = "consumer"
)

func (t UserRole) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *UserRole) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("role must be string")
	}
	switch str {
	case "admin":
		*t = UserRoleAdmin
	case "consumer":
		*t = UserRoleConsumer
	default:
		return errors.New("invalid role")
	}
	return nil
}

// ChargeCycle is how often a bill charges. Cycle math converts everything to a
// per-week cost: weekly = amount * cyclesPerYear / 52.
type ChargeCycle string

const (
	ChargeCycleWeekly     ChargeCycle = "weekly"
	ChargeCycleBiweekly   ChargeCycle = "biweekly"
	ChargeCycleMonthly    ChargeCycle = "monthly"
	ChargeCycleBimonthly  ChargeCycle = "bimonthly"
	ChargeCycleQuarterly  ChargeCycle = "quarterly"
	ChargeCycleSemiannual ChargeCycle = "semiannual"
	ChargeCycleAnnual     ChargeCycle = "annual"
	ChargeCycleCustom     ChargeCycle = "custom"
)

var chargeCycles = map[string]ChargeCycle{
	"weekly":     ChargeCycleWeekly,
	"biweekly":   ChargeCycleBiweekly,
	"monthly":    ChargeCycleMonthly,
	"bimonthly":  ChargeCycleBimonthly,
	"quarterly":  ChargeCycleQuarterly,
	"semiannual": ChargeCycleSemiannual,
	"annual":     ChargeCycleAnnual,
	"custom":     ChargeCycleCustom,
}

// cyclesPerYear for each charge cycle. Custom cycles carry no schedule so they
// contribute zero to weekly/monthly cost.
var cyclesPerYear = map[ChargeCycle]int64{
	ChargeCycleWeekly:     52,
	ChargeCycleBiweekly:   26,
	ChargeCycleMonthly:    12,
	ChargeCycleBimonthly:  6,
	ChargeCycleQuarterly:  4,
	ChargeCycleSemiannual: 2,
	ChargeCycleAnnual:     1,
	ChargeCycleCustom:     0,
}

func (t ChargeCycle) IsValid() bool {
	_, ok := chargeCycles[string(t)]
	return ok
}

// CyclesPerYear returns 0 for unknown cycles. Legacy rows with a bad cycle
// still compute (as zero cost) instead of erroring.
func (t ChargeCycle) CyclesPerYear() decimal.Decimal {
	n, ok := cyclesPerYear[t]
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromInt(n)
}

func (t ChargeCycle) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *ChargeCycle) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("chargeCycle must be string")
	}
	var ok bool
	*t, ok = chargeCycles[str]
	if !ok {
		return errors.New("invalid chargeCycle")
	}
	return nil
}

// MultiplierType selects the breakdown branch for a bill.
type MultiplierType string

const (
	MultiplierTypeMonthly MultiplierType = "monthly"
	MultiplierTypeWeekly  MultiplierType = "weekly"
	MultiplierTypeOneOff  MultiplierType = "one_off"
)

var multiplierTypes = map[string]MultiplierType{
	"monthly": MultiplierTypeMonthly,
	"weekly":  MultiplierTypeWeekly,
	"one_off": MultiplierTypeOneOff,
}

func (t MultiplierType) IsValid() bool {
	_, ok := multiplierTypes[string(t)]
	return ok
}

func (t MultiplierType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *MultiplierType) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("multiplierType must be string")
	}
	var ok bool
	*t, ok = multiplierTypes[str]
	if !ok {
		return errors.New("invalid multiplierType")
	}
	return nil
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

var messageRoles = map[string]MessageRole{
	"user":      MessageRoleUser,
	"assistant": MessageRoleAssistant,
	"system":    MessageRoleSystem,
}

func (t MessageRole) IsValid() bool {
	_, ok := messageRoles[string(t)]
	return ok
}

func (t MessageRole) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *MessageRole) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("messageRole must be string")
	}
	var ok bool
	*t, ok = messageRoles[str]
	if !ok {
		return errors.New("invalid messageRole")
	}
	return nil
}

type MetricType string

const (
	MetricTypeSteps     MetricType = "steps"
	MetricTypeHeartRate MetricType = "heart_rate"
	MetricTypeSleep     MetricType = "sleep"
	MetricTypeWeight    MetricType = "weight"
	MetricTypeWorkout   MetricType = "workout"
)

var metricTypes = map[string]MetricType{
	"steps":      MetricTypeSteps,
	"heart_rate": MetricTypeHeartRate,
	"sleep":      MetricTypeSleep,
	"weight":     MetricTypeWeight,
	"workout":    MetricTypeWorkout,
}

func (t MetricType) IsValid() bool {
	_, ok := metricTypes[string(t)]
	return ok
}

func (t MetricType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *MetricType) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("metricType must be string")
	}
	var ok bool
	*t, ok = metricTypes[str]
	if !ok {
		return errors.New("invalid metricType")
	}
	return nil
}

type ColumnType string

const (
	ColumnTypeText    ColumnType = "text"
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeSelect  ColumnType = "select"
	ColumnTypeURL     ColumnType = "url"
	ColumnTypeRating  ColumnType = "rating"
)

var columnTypes = map[string]ColumnType{
	"text":    ColumnTypeText,
	"number":  ColumnTypeNumber,
	"boolean": ColumnTypeBoolean,
	"date":    ColumnTypeDate,
	"select":  ColumnTypeSelect,
	"url":     ColumnTypeURL,
	"rating":  ColumnTypeRating,
}

func (t ColumnType) IsValid() bool {
	_, ok := columnTypes[string(t)]
	return ok
}

func (t ColumnType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *ColumnType) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("columnType must be string")
	}
	var ok bool
	*t, ok = columnTypes[str]
	if !ok {
		return errors.New("invalid columnType")
	}
	return nil
}

type ImportJobStatus string

const (
	ImportJobStatusPending ImportJobStatus = "pending"
	ImportJobStatusRunning ImportJobStatus = "running"
	ImportJobStatusSuccess ImportJobStatus = "success"
	ImportJobStatusPartial ImportJobStatus = "partial"
	ImportJobStatusFailed  ImportJobStatus = "failed"
)

func (t ImportJobStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *ImportJobStatus) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("importJobStatus must be string")
	}
	switch str {
	case "pending":
		*t = ImportJobStatusPending
	case "running":
		*t = ImportJobStatusRunning
	case "success":
		*t = ImportJobStatusSuccess
	case "partial":
		*t = ImportJobStatusPartial
	case "failed":
		*t = ImportJobStatusFailed
	default:
		return errors.New("invalid importJobStatus")
	}
	return nil
}

// Outbox event lifecycle. PENDING rows are claimed by the dispatcher,
// FAILED rows retry with backoff, DEAD rows need operator attention.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusPublished  OutboxStatus = "PUBLISHED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)
