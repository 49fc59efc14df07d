package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	AccountID   uint            `gorm:"column:account_id;not null;index"`
	DebtID      *uint           `gorm:"column:debt_id;index"` // Заполняется только для платежей по долгам
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null"`
	Type        string          `gorm:"column:type;not null;size:20"` // deposit, withdraw, debt_payment
	Category    string          `gorm:"column:category;size:50"`
	Date        time.Time       `gorm:"column:date;not null"`
	Description string          `gorm:"column:description;size:255"`
	CreatedAt   time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Transaction) TableName() string {
	return "transactions"
}
