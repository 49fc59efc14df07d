package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"financeApp/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type AccountDTO struct {
	ID        uint            `json:"id"`
	Holder    UserDTO         `json:"holder"`
	Balance   decimal.Decimal `json:"balance"`
	Title     string          `json:"title"`
	Number    string          `json:"number"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

// CreateAccountDTO представляет данные для создания счета
type CreateAccountDTO struct {
	BankName string  `json:"bank_name" validate:"required,min=2,max=100"`
	Balance  float64 `json:"balance" validate:"gte=0"`
	Title    string  `json:"title" validate:"omitempty,min=2,max=100"`
	UserID   uint    `json:"user_id" validate:"required"`
}

// AccountTransactionDTO представляет данные для пополнения или списания
type AccountTransactionDTO struct {
	AccountID uint    `json:"account_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	UserID    uint    `json:"-" validate:"required"`
}

// AccountService предоставляет методы для работы со счетами
type AccountService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewAccountService создает новый экземпляр AccountService
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{
		db:        db,
		validator: validator.New(),
	}
}

// validateDTO валидирует DTO и переводит ошибки валидации
func (s *AccountService) validateDTO(dto interface{}) error {
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "gt":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше 0")
			case "gte":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше или равно "+e.Param())
			case "min":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать минимум "+e.Param()+" символов")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
			}
		}
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errorMessages, "; "))
	}
	return nil
}

// GetById возвращает счет по ID
func (s *AccountService) GetById(id uint) (*models.Account, error) {
	var account models.Account

	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.New("ошибка при поиске счета")
	}

	return &account, nil
}

// GetAllByUserId возвращает все счета пользователя
func (s *AccountService) GetAllByUserId(userID uint) ([]models.Account, error) {
	var accounts []models.Account

	if err := s.db.Where("holder_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, errors.New("ошибка при поиске счетов")
	}

	if len(accounts) == 0 {
		return []models.Account{}, nil
	}

	return accounts, nil
}

// CreateAccount создает новый счет
func (s *AccountService) CreateAccount(dto CreateAccountDTO) (*AccountDTO, error) {
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	if dto.Title == "" {
		dto.Title = "Основной счет"
	}

	account := &models.Account{
		Number:    s.generateAccountNumber(),
		Bank:      dto.BankName,
		Balance:   decimal.NewFromFloat(dto.Balance).Round(2),
		Title:     dto.Title,
		HolderID:  dto.UserID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, errors.New("не удалось создать счет")
	}

	var user models.User
	if err := s.db.First(&user, dto.UserID).Error; err != nil {
		return nil, errors.New("ошибка при получении данных пользователя")
	}

	return &AccountDTO{
		ID: account.ID,
		Holder: UserDTO{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
		Balance:   account.Balance,
		Title:     account.Title,
		Number:    account.Number,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// generateAccountNumber генерирует номер счета
func (s *AccountService) generateAccountNumber() string {
	rand.Seed(time.Now().UnixNano())

	var number strings.Builder
	for i := 0; i < 20; i++ {
		number.WriteString(strconv.Itoa(rand.Intn(10)))
	}

	return number.String()
}

// Deposit пополняет счет и создает журнальную запись
func (s *AccountService) Deposit(dto AccountTransactionDTO) (*models.Account, error) {
	return s.applyTransaction(dto, false)
}

// Withdraw списывает средства со счета и создает журнальную запись
func (s *AccountService) Withdraw(dto AccountTransactionDTO) (*models.Account, error) {
	return s.applyTransaction(dto, true)
}

// applyTransaction атомарно изменяет баланс счета и пишет запись в журнал
func (s *AccountService) applyTransaction(dto AccountTransactionDTO, withdraw bool) (*models.Account, error) {
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	amount := decimal.NewFromFloat(dto.Amount).Round(2)

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

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

	transactionType := "deposit"
	signedAmount := amount
	if withdraw {
		if account.Balance.LessThan(amount) {
			tx.Rollback()
			return nil, ErrInsufficientFunds
		}
		transactionType = "withdraw"
		signedAmount = amount.Neg()
		account.Balance = account.Balance.Sub(amount)
	} else {
		account.Balance = account.Balance.Add(amount)
	}
	account.UpdatedAt = time.Now()

	if err := tx.Save(&account).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("ошибка при обновлении баланса")
	}

	transaction := &models.Transaction{
		AccountID: account.ID,
		Amount:    signedAmount,
		Type:      transactionType,
		Date:      time.Now(),
	}
	if err := tx.Create(transaction).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("ошибка при сохранении транзакции")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}

	return &account, nil
}
