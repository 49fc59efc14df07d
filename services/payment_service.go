package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financeApp/models"
	"financeApp/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryDebtPayment — категория журнальной записи о платеже по долгу
const CategoryDebtPayment = "Debt Payment"

// MakePaymentDTO представляет данные для платежа по долгу
type MakePaymentDTO struct {
	DebtID      uint      `json:"-" validate:"required"`
	AccountID   uint      `json:"account_id" validate:"required"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Date        time.Time `json:"date"`
	Description string    `json:"description" validate:"max=255"`
	UserID      uint      `json:"-" validate:"required"`
}

// DebtPaymentResult представляет результат обработки платежа
type DebtPaymentResult struct {
	Debt        DebtResponseDTO `json:"debt"`
	Transaction TransactionDTO  `json:"transaction"`
}

// TransactionDTO представляет журнальную запись для ответа
type TransactionDTO struct {
	ID          uint            `json:"id"`
	AccountID   uint            `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

// PaymentService обрабатывает платежи по долгам
type PaymentService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
	strategy  *StrategyService
}

// NewPaymentService создает новый экземпляр PaymentService
func NewPaymentService(db *gorm.DB, email *EmailService, strategy *StrategyService) *PaymentService {
	return &PaymentService{
		db:        db,
		validator: validator.New(),
		email:     email,
		strategy:  strategy,
	}
}

// applyPaymentToDebt возвращает копию долга после применения платежа.
// Баланс не опускается ниже нуля, счетчик платежей растет ровно на единицу,
// следующая дата платежа сдвигается на месяц от даты платежа.
func applyPaymentToDebt(debt models.Debt, amount decimal.Decimal, date time.Time) models.Debt {
	newBalance := debt.Balance.Sub(amount)
	if newBalance.LessThan(decimal.Zero) {
		newBalance = decimal.Zero
	}

	nextDue := date.AddDate(0, 1, 0)

	debt.Balance = newBalance
	debt.DueDate = &nextDue
	debt.PaymentsMade++
	debt.IsActive = newBalance.IsPositive()
	debt.IsOverdue = false
	return debt
}

// MakePayment применяет платеж к долгу как единую атомарную операцию:
// уменьшение баланса долга, списание со счета и журнальная запись
// выполняются в одной транзакции и откатываются целиком при любой ошибке
func (s *PaymentService) MakePayment(ctx context.Context, dto MakePaymentDTO) (*DebtPaymentResult, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "gt":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше 0")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" слишком длинное")
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errorMessages, "; "))
	}

	amount := decimal.NewFromFloat(dto.Amount).Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: сумма платежа должна быть больше нуля", ErrInvalidInput)
	}

	paymentDate := dto.Date
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	// Блокируем строку долга до конца транзакции, чтобы два
	// одновременных платежа не прочитали один и тот же баланс
	var debt models.Debt
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", dto.DebtID, dto.UserID).
		First(&debt).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, errors.New("ошибка при поиске долга")
	}

	// Блокируем счет списания
	var account models.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND holder_id = ?", dto.AccountID, dto.UserID).
		First(&account).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.New("ошибка при поиске счета")
	}

	// Проверяем достаточность средств
	if account.Balance.LessThan(amount) {
		tx.Rollback()
		return nil, ErrInsufficientFunds
	}

	wasActive := debt.IsActive
	updated := applyPaymentToDebt(debt, amount, paymentDate)

	if err := tx.Save(&updated).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("ошибка при обновлении долга")
	}

	// Списываем средства со счета
	account.Balance = account.Balance.Sub(amount)
	account.UpdatedAt = time.Now()
	if err := tx.Save(&account).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("ошибка при обновлении баланса счета")
	}

	// Создаем журнальную запись о платеже
	transaction := &models.Transaction{
		AccountID:   dto.AccountID,
		DebtID:      &debt.ID,
		Amount:      amount.Neg(),
		Type:        "debt_payment",
		Category:    CategoryDebtPayment,
		Date:        paymentDate,
		Description: dto.Description,
	}
	if err := tx.Create(transaction).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("ошибка при создании транзакции")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		utils.GetMetrics().RecordPayment(err)
		return nil, errors.New("ошибка при подтверждении транзакции")
	}

	utils.GetMetrics().RecordPayment(nil)

	// Сбрасываем кешированную сводку: состояние долгов изменилось
	if s.strategy != nil {
		s.strategy.InvalidateSummary(ctx, dto.UserID)
	}

	// Уведомления не критичны: ошибку логируем, платеж уже применен
	if s.email != nil {
		var user models.User
		if err := s.db.First(&user, dto.UserID).Error; err == nil {
			if err := s.email.SendPaymentReceipt(user.Email, updated.Name, amount, updated.Balance); err != nil {
				utils.LogError("Не удалось отправить квитанцию о платеже: %v", err)
			}
			if wasActive && !updated.IsActive {
				utils.GetMetrics().RecordDebtOperation("paid_off", nil)
				if err := s.email.SendDebtPaidNotification(user.Email, updated.Name); err != nil {
					utils.LogError("Не удалось отправить уведомление о погашении долга: %v", err)
				}
			}
		}
	}

	return &DebtPaymentResult{
		Debt: toDebtResponseDTO(updated),
		Transaction: TransactionDTO{
			ID:          transaction.ID,
			AccountID:   transaction.AccountID,
			Amount:      transaction.Amount,
			Category:    transaction.Category,
			Date:        transaction.Date,
			Description: transaction.Description,
		},
	}, nil
}
