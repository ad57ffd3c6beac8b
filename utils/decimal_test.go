package utils

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmountPlain(t *testing.T) {
	got, err := ParseAmount("1234.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("1234.50")) {
		t.Errorf("got %s, want 1234.50", got)
	}
}

func TestParseAmountFormatted(t *testing.T) {
	cases := map[string]string{
		"1,234.50":   "1234.50",
		"$1,234.50":  "1234.50",
		"USD 1234.5": "1234.5",
		"  $20  ":    "20",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): unexpected error: %v", in, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseAmountNegative(t *testing.T) {
	got, err := ParseAmount("-$20,000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(-20000)) {
		t.Errorf("got %s, want -20000", got)
	}
}

func TestParseAmountJSONNumber(t *testing.T) {
	got, err := ParseAmount(json.Number("42.25"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("42.25")) {
		t.Errorf("got %s, want 42.25", got)
	}
}

func TestParseAmountInvalid(t *testing.T) {
	if _, err := ParseAmount("not money"); err == nil {
		t.Error("expected error for non-numeric input")
	}
	if _, err := ParseAmount(""); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ParseAmount(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}
