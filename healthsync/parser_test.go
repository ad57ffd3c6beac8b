package healthsync

import (
	"testing"

	"github.com/ventiam/ventiam_backend/models"
)

func TestParseCSV(t *testing.T) {
	data := []byte("type,recorded_at,value,unit,source\n" +
		"steps,2025-06-01,8421,count,phone\n" +
		"weight,2025-06-01 07:30:00,82.4,kg,scale\n" +
		"heart_rate,2025-06-01T08:00:00Z,61,bpm,watch\n")

	result, err := ParseExport(data, "csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RowsTotal != 3 || result.RowsFailed != 0 {
		t.Fatalf("expected 3 good rows, got total=%d failed=%d", result.RowsTotal, result.RowsFailed)
	}
	if result.Metrics[0].MetricType != models.MetricTypeSteps {
		t.Errorf("expected steps, got %s", result.Metrics[0].MetricType)
	}
	if result.Metrics[1].Value.String() != "82.4" {
		t.Errorf("expected 82.4, got %s", result.Metrics[1].Value.String())
	}
	if result.Metrics[2].Source != "watch" {
		t.Errorf("expected source watch, got %s", result.Metrics[2].Source)
	}
}

func TestParseCSVBadRowsDoNotAbort(t *testing.T) {
	data := []byte("type,recorded_at,value\n" +
		"steps,2025-06-01,8421\n" +
		"blood_type,2025-06-01,1\n" +
		"weight,not-a-date,80\n" +
		"sleep,2025-06-01,-2\n")

	result, err := ParseExport(data, "csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Metrics) != 1 {
		t.Errorf("expected 1 good row, got %d", len(result.Metrics))
	}
	if result.RowsFailed != 3 {
		t.Errorf("expected 3 failed rows, got %d", result.RowsFailed)
	}
	if result.FirstError == "" {
		t.Error("expected first error to be recorded")
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	data := []byte("type,value\nsteps,100\n")
	if _, err := ParseExport(data, "csv"); err == nil {
		t.Error("expected missing recorded_at column to fail the parse")
	}
}

func TestParseJSONArrayAndWrapped(t *testing.T) {
	array := []byte(`[{"type":"sleep","recorded_at":"2025-06-01","value":7.5,"unit":"h"}]`)
	result, err := ParseExport(array, "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Metrics) != 1 || result.Metrics[0].MetricType != models.MetricTypeSleep {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Metrics[0].Source != "import" {
		t.Errorf("expected default source import, got %s", result.Metrics[0].Source)
	}

	wrapped := []byte(`{"metrics":[{"type":"workout","recorded_at":"2025-06-02T18:00:00Z","value":45,"unit":"min"}]}`)
	result, err = ParseExport(wrapped, "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Metrics) != 1 || result.Metrics[0].MetricType != models.MetricTypeWorkout {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseExportUnknownFormat(t *testing.T) {
	if _, err := ParseExport([]byte("x"), "xml"); err == nil {
		t.Error("expected unsupported format to be rejected")
	}
}
