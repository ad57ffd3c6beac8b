package models

import (
	"time"

	"github.com/ventiam/ventiam_backend/utils"
)

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

// key
func (a FinanceAccount) GetId() int {
	return a.ID
}

func (a FinanceAccount) GetDefault(id int) Data {
	return FinanceAccount{
		ID:        id,
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (b FinanceBill) GetId() int {
	return b.ID
}

func (b FinanceBill) GetDefault(id int) Data {
	return FinanceBill{
		ID:             id,
		ChargeCycle:    ChargeCycleMonthly,
		MultiplierType: MultiplierTypeMonthly,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func (c Conversation) GetId() int {
	return c.ID
}

func (c Conversation) GetDefault(id int) Data {
	return Conversation{
		ID:          id,
		IsArchived:  utils.NewFalse(),
		IsDriveMode: utils.NewFalse(),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func (a Agent) GetId() int {
	return a.ID
}

func (a Agent) GetDefault(id int) Data {
	return Agent{
		ID:        id,
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (h Habit) GetId() int {
	return h.ID
}

func (h Habit) GetDefault(id int) Data {
	return Habit{
		ID:         id,
		IsArchived: utils.NewFalse(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func (t UserTable) GetId() int {
	return t.ID
}

func (t UserTable) GetDefault(id int) Data {
	return UserTable{
		ID:        id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// loader loading more than one model by one id
type RelatedData interface {
	GetReferenceId() int
}

func (m Message) GetReferenceId() int {
	return m.ConversationId
}

func (e HabitEntry) GetReferenceId() int {
	return e.HabitId
}

func (c UserTableColumn) GetReferenceId() int {
	return c.TableId
}

func (b FinanceBill) GetReferenceId() int {
	if b.BillingAccountId == nil {
		return 0
	}
	return *b.BillingAccountId
}
