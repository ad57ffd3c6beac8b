package models

import (
	"context"
	"time"

	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/utils"
	"gorm.io/gorm"
)

// ReminderOutbox implements a transactional outbox for bill-due reminder
// events: rows are written in the same transaction as the state change and
// published to pub/sub after commit by the dispatcher.
type ReminderOutbox struct {
	ID            int        `gorm:"primary_key;index:idx_reminder_dispatch,priority:3" json:"id"`
	UserId        int        `gorm:"index;not null" json:"user_id"`
	ReferenceId   int        `gorm:"index;not null" json:"reference_id"`
	ReferenceType string     `gorm:"size:50;not null" json:"reference_type"`
	Action        string     `gorm:"size:50;not null" json:"action"`
	DueDate       time.Time  `gorm:"not null" json:"due_date"`
	Payload       []byte     `gorm:"type:json" json:"payload"`
	CorrelationId string     `gorm:"size:64" json:"correlation_id"`
	// Publish happens after commit via the dispatcher.
	PublishStatus    OutboxStatus `gorm:"size:20;index;not null;default:'PENDING';index:idx_reminder_dispatch,priority:1" json:"publish_status"`
	PublishAttempts  int          `gorm:"not null;default:0" json:"publish_attempts"`
	LastPublishError *string      `gorm:"type:text" json:"last_publish_error"`
	NextAttemptAt    *time.Time   `gorm:"index;index:idx_reminder_dispatch,priority:2" json:"next_attempt_at"`
	PublishedAt      *time.Time   `json:"published_at"`
	PubSubMessageId  *string      `gorm:"size:255" json:"pub_sub_message_id"`
	LockedAt         *time.Time   `gorm:"index" json:"locked_at"`
	LockedBy         *string      `gorm:"size:64" json:"locked_by"`
	CreatedAt        time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToReminderMessage(record ReminderOutbox) config.ReminderMessage {
	return config.ReminderMessage{
		ID:            record.ID,
		UserId:        record.UserId,
		DueDate:       record.DueDate,
		ReferenceId:   record.ReferenceId,
		ReferenceType: record.ReferenceType,
		Action:        record.Action,
		Payload:       record.Payload,
		CorrelationId: record.CorrelationId,
	}
}

// newBillReminder builds the outbox row for one bill event. Due date falls
// back to now for bills without a next due date.
func newBillReminder(bill *FinanceBill, action string, payload []byte, correlationId string) ReminderOutbox {
	dueDate := time.Now().UTC()
	if bill.NextDueDate != nil {
		dueDate = *bill.NextDueDate
	}
	return ReminderOutbox{
		UserId:        bill.UserId,
		ReferenceId:   bill.ID,
		ReferenceType: "finance_bill",
		Action:        action,
		DueDate:       dueDate,
		Payload:       payload,
		CorrelationId: correlationId,
		PublishStatus: OutboxStatusPending,
	}
}

// EnqueueBillReminder writes a reminder event inside the caller's transaction.
// Nothing is published here; the dispatcher owns delivery.
func EnqueueBillReminder(ctx context.Context, tx *gorm.DB, bill *FinanceBill, action string, payload []byte) error {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	record := newBillReminder(bill, action, payload, correlationId)
	return tx.WithContext(ctx).Create(&record).Error
}
