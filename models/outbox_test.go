package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewBillReminderUsesNextDueDate(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	bill := FinanceBill{ID: 7, UserId: 3, NextDueDate: &due}

	record := newBillReminder(&bill, "bill.created", []byte(`{}`), "corr-1")

	if record.UserId != 3 || record.ReferenceId != 7 {
		t.Errorf("record keyed to user %d ref %d, want 3/7", record.UserId, record.ReferenceId)
	}
	if record.ReferenceType != "finance_bill" {
		t.Errorf("reference type %q, want finance_bill", record.ReferenceType)
	}
	if record.Action != "bill.created" {
		t.Errorf("action %q, want bill.created", record.Action)
	}
	if !record.DueDate.Equal(due) {
		t.Errorf("due date %v, want %v", record.DueDate, due)
	}
	if record.PublishStatus != OutboxStatusPending {
		t.Errorf("new rows must start PENDING, got %s", record.PublishStatus)
	}
	if record.CorrelationId != "corr-1" {
		t.Errorf("correlation id %q, want corr-1", record.CorrelationId)
	}
}

func TestNewBillReminderDefaultsDueDate(t *testing.T) {
	bill := FinanceBill{ID: 1, UserId: 1}
	before := time.Now().UTC()
	record := newBillReminder(&bill, "bill.deleted", nil, "")
	after := time.Now().UTC()

	if record.DueDate.Before(before) || record.DueDate.After(after) {
		t.Errorf("due date %v should default to now for bills without one", record.DueDate)
	}
}

func TestBillReminderPayload(t *testing.T) {
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bill := FinanceBill{
		ID:          12,
		UserId:      4,
		CompanyName: "Netflix",
		Amount:      decimal.NewFromInt(15),
		ChargeCycle: ChargeCycleMonthly,
		NextDueDate: &due,
		Category:    "entertainment",
	}

	raw, err := billReminderPayload(&bill)
	if err != nil {
		t.Fatalf("payload failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("payload is not valid json: %v", err)
	}
	if decoded["bill_id"] != float64(12) {
		t.Errorf("bill_id %v, want 12", decoded["bill_id"])
	}
	if decoded["company_name"] != "Netflix" {
		t.Errorf("company_name %v, want Netflix", decoded["company_name"])
	}
}
