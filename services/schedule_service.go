package services

import (
	"errors"
	"fmt"
	"time"

	"financeApp/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultScheduleCapMonths ограничивает график амортизации 30 годами,
// чтобы генерация завершалась даже для патологических входных данных
const DefaultScheduleCapMonths = 360

// ScheduleRow представляет одну строку графика амортизации
type ScheduleRow struct {
	Month              int             `json:"month"`
	Date               time.Time       `json:"date"`
	Interest           decimal.Decimal `json:"interest"`
	Principal          decimal.Decimal `json:"principal"`
	Payment            decimal.Decimal `json:"payment"`
	RemainingBalance   decimal.Decimal `json:"remaining_balance"`
	CumulativeInterest decimal.Decimal `json:"cumulative_interest"`
}

// AmortizationSchedule представляет помесячный график погашения долга
type AmortizationSchedule struct {
	DebtID         uint            `json:"debt_id"`
	ExtraPayment   decimal.Decimal `json:"extra_payment"`
	Rows           []ScheduleRow   `json:"rows"`
	Months         int             `json:"months"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	FullyAmortized bool            `json:"fully_amortized"` // false, если баланс не обнулился до потолка
}

// PayoffSavings представляет выгоду от доплаты сверх минимального платежа
type PayoffSavings struct {
	BaseMonths                 int             `json:"base_months"`
	AcceleratedMonths          int             `json:"accelerated_months"`
	MonthsSaved                int             `json:"months_saved"`
	InterestSaved              decimal.Decimal `json:"interest_saved"`
	PayoffTimeReductionPercent decimal.Decimal `json:"payoff_time_reduction_percent"`
}

// ScheduleService предоставляет методы построения графиков амортизации
type ScheduleService struct {
	db        *gorm.DB
	capMonths int
}

// NewScheduleService создает новый экземпляр ScheduleService
func NewScheduleService(db *gorm.DB, capMonths int) *ScheduleService {
	if capMonths <= 0 {
		capMonths = DefaultScheduleCapMonths
	}
	return &ScheduleService{db: db, capMonths: capMonths}
}

// BuildAmortizationSchedule строит график погашения по снимку долга.
// Функция чистая; startDate задает точку отсчета дат платежей.
// Проценты округляются до копеек один раз за месяц, а не на каждом
// арифметическом шаге, чтобы график был воспроизводимым.
func BuildAmortizationSchedule(debt models.Debt, extraPayment decimal.Decimal, startDate time.Time, capMonths int) (*AmortizationSchedule, error) {
	if extraPayment.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: доплата не может быть отрицательной", ErrInvalidInput)
	}
	if capMonths <= 0 {
		capMonths = DefaultScheduleCapMonths
	}

	monthlyRate := debt.InterestRate.
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(12))
	payment := debt.MinimumPayment.Add(extraPayment)

	schedule := &AmortizationSchedule{
		DebtID:        debt.ID,
		ExtraPayment:  extraPayment,
		Rows:          make([]ScheduleRow, 0, 12),
		TotalInterest: decimal.Zero,
	}

	remaining := debt.Balance
	cumulative := decimal.Zero

	for month := 1; month <= capMonths && remaining.IsPositive(); month++ {
		interest := remaining.Mul(monthlyRate).Round(2)

		// Платеж в счет основного долга не превышает остаток;
		// при платеже меньше процентов доля отрицательна и баланс растет
		principalPortion := payment.Sub(interest)
		if principalPortion.GreaterThan(remaining) {
			principalPortion = remaining
		}

		remaining = remaining.Sub(principalPortion)
		cumulative = cumulative.Add(interest)

		schedule.Rows = append(schedule.Rows, ScheduleRow{
			Month:              month,
			Date:               startDate.AddDate(0, month, 0),
			Interest:           interest,
			Principal:          principalPortion,
			Payment:            principalPortion.Add(interest),
			RemainingBalance:   remaining,
			CumulativeInterest: cumulative,
		})
	}

	schedule.Months = len(schedule.Rows)
	schedule.TotalInterest = cumulative
	schedule.FullyAmortized = !remaining.IsPositive()

	return schedule, nil
}

// GenerateSchedule загружает долг пользователя и строит график погашения
func (s *ScheduleService) GenerateSchedule(debtID, userID uint, extraPayment decimal.Decimal) (*AmortizationSchedule, error) {
	var debt models.Debt
	if err := s.db.Where("id = ? AND user_id = ?", debtID, userID).First(&debt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, errors.New("ошибка при поиске долга")
	}

	return BuildAmortizationSchedule(debt, extraPayment, time.Now(), s.capMonths)
}

// CalculateSavings сравнивает погашение минимальными платежами с погашением
// при доплате. Обе ветки считаются по закрытой формуле; если хотя бы одна
// не амортизируется, результат не вычислим.
func CalculateSavings(debt models.Debt, extraPayment decimal.Decimal) (*PayoffSavings, error) {
	if !extraPayment.IsPositive() {
		return nil, fmt.Errorf("%w: доплата должна быть больше нуля", ErrInvalidInput)
	}

	monthlyRate := debt.InterestRate.
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(12)).
		InexactFloat64()
	balance := debt.Balance.InexactFloat64()
	minPayment := debt.MinimumPayment.InexactFloat64()
	accelerated := debt.MinimumPayment.Add(extraPayment).InexactFloat64()

	baseMonths, baseInterest, ok := closedFormPayoff(balance, minPayment, monthlyRate)
	if !ok {
		return nil, ErrNotComputable
	}

	fastMonths, fastInterest, ok := closedFormPayoff(balance, accelerated, monthlyRate)
	if !ok {
		return nil, ErrNotComputable
	}

	savings := &PayoffSavings{
		BaseMonths:        baseMonths,
		AcceleratedMonths: fastMonths,
		MonthsSaved:       baseMonths - fastMonths,
		InterestSaved: decimal.NewFromFloat(baseInterest).
			Sub(decimal.NewFromFloat(fastInterest)).
			Round(2),
	}
	if savings.InterestSaved.LessThan(decimal.Zero) {
		savings.InterestSaved = decimal.Zero
	}
	if baseMonths > 0 {
		savings.PayoffTimeReductionPercent = decimal.NewFromInt(int64(savings.MonthsSaved)).
			Div(decimal.NewFromInt(int64(baseMonths))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return savings, nil
}
