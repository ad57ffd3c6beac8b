package healthsync

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ventiam/ventiam_backend/models"
)

// ParseResult carries the rows that parsed plus per-row failures; a bad row
// never aborts the import.
type ParseResult struct {
	Metrics    []*models.HealthMetric
	RowsTotal  int
	RowsFailed int
	FirstError string
}

type importRow struct {
	Type       string      `json:"type"`
	RecordedAt string      `json:"recorded_at"`
	Value      json.Number `json:"value"`
	Unit       string      `json:"unit"`
	Source     string      `json:"source"`
}

// ParseExport dispatches on the declared format.
func ParseExport(data []byte, format string) (*ParseResult, error) {
	switch strings.ToLower(format) {
	case "csv":
		return parseCSV(data)
	case "json":
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// parseCSV expects a header row: type,recorded_at,value,unit,source
// (unit and source optional).
func parseCSV(data []byte) (*ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return &ParseResult{}, nil
	}

	header := map[string]int{}
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"type", "recorded_at", "value"} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	result := &ParseResult{}
	for i, record := range records[1:] {
		result.RowsTotal++
		row := importRow{
			Type:       field(record, "type"),
			RecordedAt: field(record, "recorded_at"),
			Value:      json.Number(field(record, "value")),
			Unit:       field(record, "unit"),
			Source:     field(record, "source"),
		}
		metric, err := rowToMetric(row)
		if err != nil {
			result.RowsFailed++
			if result.FirstError == "" {
				result.FirstError = fmt.Sprintf("row %d: %s", i+2, err.Error())
			}
			continue
		}
		result.Metrics = append(result.Metrics, metric)
	}
	return result, nil
}

// parseJSON expects either a bare array of rows or {"metrics": [...]}.
func parseJSON(data []byte) (*ParseResult, error) {
	var rows []importRow
	if err := json.Unmarshal(data, &rows); err != nil {
		var wrapped struct {
			Metrics []importRow `json:"metrics"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		rows = wrapped.Metrics
	}

	result := &ParseResult{}
	for i, row := range rows {
		result.RowsTotal++
		metric, err := rowToMetric(row)
		if err != nil {
			result.RowsFailed++
			if result.FirstError == "" {
				result.FirstError = fmt.Sprintf("entry %d: %s", i+1, err.Error())
			}
			continue
		}
		result.Metrics = append(result.Metrics, metric)
	}
	return result, nil
}

func rowToMetric(row importRow) (*models.HealthMetric, error) {
	metricType := models.MetricType(strings.ToLower(strings.TrimSpace(row.Type)))
	if !metricType.IsValid() {
		return nil, fmt.Errorf("unknown metric type %q", row.Type)
	}

	recordedAt, err := parseTimestamp(row.RecordedAt)
	if err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(row.Value.String())
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", row.Value.String())
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("negative value %s", value.String())
	}

	source := strings.TrimSpace(row.Source)
	if source == "" {
		source = "import"
	}

	return &models.HealthMetric{
		MetricType: metricType,
		Source:     source,
		RecordedAt: recordedAt,
		Value:      value,
		Unit:       strings.TrimSpace(row.Unit),
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
