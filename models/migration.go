package models

import (
	"log"

	"github.com/ventiam/ventiam_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{}, &UserProfile{},
		&FinanceAccount{}, &FinanceBill{}, &FinanceBillingPeriod{},
		&FinanceProjection{}, &FinanceMonthlySnapshot{},
		&Conversation{}, &Message{}, &Agent{}, &AiModel{},
		&Habit{}, &HabitEntry{},
		&HealthMetric{}, &HealthImportJob{},
		&UserTable{}, &UserTableColumn{}, &UserTableRow{},
		&ReminderOutbox{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
