package models

import "testing"

func TestParseCellValueNumberBoundsAndPrecision(t *testing.T) {
	config := JSONMap{"min": 0.0, "max": 100.0, "precision": 1.0}

	value, err := ParseCellValue(ColumnTypeNumber, config, 42.34)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 42.3 {
		t.Errorf("expected 42.3, got %v", value)
	}

	if _, err := ParseCellValue(ColumnTypeNumber, config, 150.0); err == nil {
		t.Error("expected out-of-range number to be rejected")
	}
	if _, err := ParseCellValue(ColumnTypeNumber, config, "abc"); err == nil {
		t.Error("expected non-numeric value to be rejected")
	}
}

func TestParseCellValueSelect(t *testing.T) {
	config := JSONMap{"options": []interface{}{"todo", "doing", "done"}}

	if _, err := ParseCellValue(ColumnTypeSelect, config, "doing"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseCellValue(ColumnTypeSelect, config, "blocked"); err == nil {
		t.Error("expected value outside options to be rejected")
	}
}

func TestParseCellValueDate(t *testing.T) {
	if _, err := ParseCellValue(ColumnTypeDate, nil, "2025-03-14"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseCellValue(ColumnTypeDate, nil, "14/03/2025"); err == nil {
		t.Error("expected non-ISO date to be rejected")
	}
}

func TestParseCellValueURL(t *testing.T) {
	if _, err := ParseCellValue(ColumnTypeURL, nil, "https://example.com/page"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseCellValue(ColumnTypeURL, nil, "not a url"); err == nil {
		t.Error("expected malformed URL to be rejected")
	}
	if _, err := ParseCellValue(ColumnTypeURL, nil, "ftp://example.com"); err == nil {
		t.Error("expected non-http scheme to be rejected")
	}
}

func TestParseCellValueRating(t *testing.T) {
	value, err := ParseCellValue(ColumnTypeRating, nil, 4.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 4 {
		t.Errorf("expected 4, got %v", value)
	}

	if _, err := ParseCellValue(ColumnTypeRating, nil, 6.0); err == nil {
		t.Error("expected rating above default max of 5 to be rejected")
	}
	if _, err := ParseCellValue(ColumnTypeRating, JSONMap{"max": 10.0}, 6.0); err != nil {
		t.Errorf("unexpected error with raised max: %v", err)
	}
	if _, err := ParseCellValue(ColumnTypeRating, nil, 3.5); err == nil {
		t.Error("expected fractional rating to be rejected")
	}
}

func TestParseCellValueNilClearsCell(t *testing.T) {
	value, err := ParseCellValue(ColumnTypeText, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != nil {
		t.Errorf("expected nil, got %v", value)
	}
}

func TestValidateColumnConfig(t *testing.T) {
	if err := ValidateColumnConfig(ColumnType("geo"), nil); err == nil {
		t.Error("expected unknown column type to be rejected")
	}
	if err := ValidateColumnConfig(ColumnTypeSelect, JSONMap{}); err == nil {
		t.Error("expected select without options to be rejected")
	}
	if err := ValidateColumnConfig(ColumnTypeNumber, JSONMap{"min": 10.0, "max": 1.0}); err == nil {
		t.Error("expected min > max to be rejected")
	}
	if err := ValidateColumnConfig(ColumnTypeText, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
