package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financeApp/config"
	"financeApp/models"
	"financeApp/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateDebtDTO представляет данные для создания долга
type CreateDebtDTO struct {
	Name           string     `json:"name" validate:"required,min=2,max=100"`
	Lender         string     `json:"lender" validate:"max=100"`
	AccountNumber  string     `json:"account_number" validate:"max=50"`
	Notes          string     `json:"notes" validate:"max=500"`
	Type           string     `json:"type" validate:"required,oneof=loan credit_card mortgage personal auto student"`
	Principal      float64    `json:"principal" validate:"required,gt=0"`
	InterestRate   *float64   `json:"interest_rate" validate:"omitempty,gte=0,lte=100"`
	MinimumPayment float64    `json:"minimum_payment" validate:"required,gt=0"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
	TermMonths     *int       `json:"term_months" validate:"omitempty,gt=0"`
	UserID         uint       `json:"-" validate:"required"`
}

// UpdateDebtDTO представляет данные для изменения долга.
// Баланс и счетчик платежей через этот путь не меняются, кроме
// явной корректировки баланса.
type UpdateDebtDTO struct {
	Name           *string    `json:"name" validate:"omitempty,min=2,max=100"`
	Lender         *string    `json:"lender" validate:"omitempty,max=100"`
	Notes          *string    `json:"notes" validate:"omitempty,max=500"`
	InterestRate   *float64   `json:"interest_rate" validate:"omitempty,gte=0,lte=100"`
	MinimumPayment *float64   `json:"minimum_payment" validate:"omitempty,gt=0"`
	DueDate        *time.Time `json:"due_date"`
	Balance        *float64   `json:"balance" validate:"omitempty,gte=0"` // Корректирующее обновление
}

// DebtResponseDTO представляет долг с расчетными показателями
type DebtResponseDTO struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Lender         string          `json:"lender,omitempty"`
	AccountNumber  string          `json:"account_number,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Type           models.DebtType `json:"type"`
	Principal      decimal.Decimal `json:"principal"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	StartDate      time.Time       `json:"start_date"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	TermMonths     *int            `json:"term_months,omitempty"`
	PaymentsMade   uint            `json:"payments_made"`
	IsActive       bool            `json:"is_active"`
	IsOverdue      bool            `json:"is_overdue"`
	Metrics        DebtMetrics     `json:"metrics"`
}

// toDebtResponseDTO конвертирует модель Debt в DTO с показателями
func toDebtResponseDTO(debt models.Debt) DebtResponseDTO {
	return DebtResponseDTO{
		ID:             debt.ID,
		Name:           debt.Name,
		Lender:         debt.Lender,
		Notes:          debt.Notes,
		Type:           debt.Type,
		Principal:      debt.Principal,
		Balance:        debt.Balance,
		InterestRate:   debt.InterestRate,
		MinimumPayment: debt.MinimumPayment,
		StartDate:      debt.StartDate,
		DueDate:        debt.DueDate,
		TermMonths:     debt.TermMonths,
		PaymentsMade:   debt.PaymentsMade,
		IsActive:       debt.IsActive,
		IsOverdue:      debt.IsOverdue,
		Metrics:        CalculateDebtMetrics(debt),
	}
}

// DebtService предоставляет методы для работы с долгами
type DebtService struct {
	db        *gorm.DB
	validator *validator.Validate
	config    *config.Config
	strategy  *StrategyService
}

// NewDebtService создает новый экземпляр DebtService
func NewDebtService(db *gorm.DB, cfg *config.Config, strategy *StrategyService) *DebtService {
	return &DebtService{
		db:        db,
		validator: validator.New(),
		config:    cfg,
		strategy:  strategy,
	}
}

// validateDTO валидирует DTO и переводит ошибки валидации
func (s *DebtService) validateDTO(dto interface{}) error {
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
			case "lte":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть меньше или равно "+e.Param())
			case "min":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать минимум "+e.Param()+" символов")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" превышает максимум "+e.Param())
			case "oneof":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
			}
		}
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errorMessages, "; "))
	}
	return nil
}

// Create создает новый долг. Баланс нового долга равен исходной сумме,
// долг активен, платежей не зарегистрировано.
func (s *DebtService) Create(ctx context.Context, dto CreateDebtDTO) (*DebtResponseDTO, error) {
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	// Если ставка не указана, берем ключевую ставку с надбавкой
	var rate float64
	if dto.InterestRate != nil {
		rate = *dto.InterestRate
	} else {
		keyRate, err := GetCentralBankRate()
		if err != nil {
			return nil, errors.New("ошибка при получении ставки центрального банка")
		}
		rate = keyRate + s.config.Debt.KeyRateMargin
	}

	startDate := time.Now()
	if dto.StartDate != nil {
		startDate = *dto.StartDate
	}

	principal := decimal.NewFromFloat(dto.Principal).Round(2)

	debt := models.Debt{
		UserID:         dto.UserID,
		Name:           dto.Name,
		Lender:         dto.Lender,
		Notes:          dto.Notes,
		Type:           models.DebtType(dto.Type),
		Principal:      principal,
		Balance:        principal,
		InterestRate:   decimal.NewFromFloat(rate).Round(2),
		MinimumPayment: decimal.NewFromFloat(dto.MinimumPayment).Round(2),
		StartDate:      startDate,
		DueDate:        dto.DueDate,
		TermMonths:     dto.TermMonths,
		PaymentsMade:   0,
		IsActive:       true,
	}

	// Номер счета кредитора храним только в зашифрованном виде
	if dto.AccountNumber != "" {
		if s.config.AccountPublicKey != "" {
			encrypted, err := utils.PGPEncrypt(dto.AccountNumber, s.config.AccountPublicKey)
			if err != nil {
				return nil, errors.New("не удалось зашифровать номер счета")
			}
			debt.AccountNumberEncrypted = encrypted
		}
		debt.AccountNumberHMAC = utils.GenerateHMAC(dto.AccountNumber, []byte(s.config.AccountHMACKey))
	}

	if err := s.db.Create(&debt).Error; err != nil {
		return nil, errors.New("не удалось создать долг")
	}

	utils.GetMetrics().RecordDebtOperation("create", nil)
	if s.strategy != nil {
		s.strategy.InvalidateSummary(ctx, dto.UserID)
	}

	response := toDebtResponseDTO(debt)
	return &response, nil
}

// GetDebtsByUserID возвращает все долги пользователя с показателями
func (s *DebtService) GetDebtsByUserID(userID uint) ([]DebtResponseDTO, error) {
	var debts []models.Debt
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&debts).Error; err != nil {
		return nil, errors.New("ошибка при получении долгов")
	}

	responses := make([]DebtResponseDTO, len(debts))
	for i, debt := range debts {
		responses[i] = toDebtResponseDTO(debt)
	}
	return responses, nil
}

// getOwnedDebt возвращает долг, если он принадлежит пользователю.
// Чужой или несуществующий долг неразличимы для вызывающего.
func (s *DebtService) getOwnedDebt(debtID, userID uint) (*models.Debt, error) {
	var debt models.Debt
	if err := s.db.Where("id = ? AND user_id = ?", debtID, userID).First(&debt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, errors.New("ошибка при поиске долга")
	}
	return &debt, nil
}

// GetDebtSnapshot возвращает модель долга пользователя без показателей
func (s *DebtService) GetDebtSnapshot(debtID, userID uint) (*models.Debt, error) {
	return s.getOwnedDebt(debtID, userID)
}

// GetDebtByID возвращает долг пользователя с показателями
func (s *DebtService) GetDebtByID(debtID, userID uint) (*DebtResponseDTO, error) {
	debt, err := s.getOwnedDebt(debtID, userID)
	if err != nil {
		return nil, err
	}

	response := toDebtResponseDTO(*debt)

	// Номер счета возвращаем только при настроенном приватном ключе
	if debt.AccountNumberEncrypted != "" && s.config.AccountPrivateKey != "" {
		number, err := utils.PGPDecrypt(debt.AccountNumberEncrypted, s.config.AccountPrivateKey)
		if err != nil {
			utils.LogError("Не удалось расшифровать номер счета долга %d: %v", debt.ID, err)
		} else if utils.ValidateHMAC(number, debt.AccountNumberHMAC, []byte(s.config.AccountHMACKey)) {
			response.AccountNumber = number
		}
	}

	return &response, nil
}

// Update изменяет описательные поля долга
func (s *DebtService) Update(ctx context.Context, debtID, userID uint, dto UpdateDebtDTO) (*DebtResponseDTO, error) {
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	debt, err := s.getOwnedDebt(debtID, userID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		debt.Name = *dto.Name
	}
	if dto.Lender != nil {
		debt.Lender = *dto.Lender
	}
	if dto.Notes != nil {
		debt.Notes = *dto.Notes
	}
	if dto.InterestRate != nil {
		debt.InterestRate = decimal.NewFromFloat(*dto.InterestRate).Round(2)
	}
	if dto.MinimumPayment != nil {
		debt.MinimumPayment = decimal.NewFromFloat(*dto.MinimumPayment).Round(2)
	}
	if dto.DueDate != nil {
		debt.DueDate = dto.DueDate
	}
	if dto.Balance != nil {
		// Корректирующее обновление баланса; активность следует за балансом
		debt.Balance = decimal.NewFromFloat(*dto.Balance).Round(2)
		debt.IsActive = debt.Balance.IsPositive()
	}

	if err := s.db.Save(debt).Error; err != nil {
		return nil, errors.New("не удалось обновить долг")
	}

	if s.strategy != nil {
		s.strategy.InvalidateSummary(ctx, userID)
	}

	response := toDebtResponseDTO(*debt)
	return &response, nil
}

// Delete безусловно удаляет долг пользователя.
// Журнальные записи о прошлых платежах сохраняются.
func (s *DebtService) Delete(ctx context.Context, debtID, userID uint) error {
	debt, err := s.getOwnedDebt(debtID, userID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(debt).Error; err != nil {
		return errors.New("не удалось удалить долг")
	}

	utils.GetMetrics().RecordDebtOperation("delete", nil)
	if s.strategy != nil {
		s.strategy.InvalidateSummary(ctx, userID)
	}
	return nil
}
