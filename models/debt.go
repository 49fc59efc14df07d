package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtType представляет тип долга
type DebtType string

const (
	DebtTypeLoan       DebtType = "loan"
	DebtTypeCreditCard DebtType = "credit_card"
	DebtTypeMortgage   DebtType = "mortgage"
	DebtTypePersonal   DebtType = "personal"
	DebtTypeAuto       DebtType = "auto"
	DebtTypeStudent    DebtType = "student"
)

// Debt представляет долг пользователя
type Debt struct {
	gorm.Model
	UserID                 uint            `gorm:"not null;index"`
	User                   User            `gorm:"foreignKey:UserID"`
	Name                   string          `gorm:"not null;size:100"`
	Lender                 string          `gorm:"size:100"`
	AccountNumberEncrypted string          `gorm:"size:2048"`
	AccountNumberHMAC      string          `gorm:"size:100"`
	Notes                  string          `gorm:"size:500"`
	Type                   DebtType        `gorm:"type:varchar(20);not null;default:'loan'"`
	Principal              decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Исходная сумма долга, не меняется после создания
	Balance                decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	InterestRate           decimal.Decimal `gorm:"type:decimal(5,2);not null"` // Годовая ставка в процентах
	MinimumPayment         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	StartDate              time.Time       `gorm:"not null"`
	DueDate                *time.Time
	TermMonths             *int
	PaymentsMade           uint `gorm:"not null;default:0"`
	IsActive               bool `gorm:"not null;default:true"`
	IsOverdue              bool `gorm:"not null;default:false"`
}

// TableName возвращает имя таблицы для модели Debt
func (Debt) TableName() string {
	return "debts"
}
