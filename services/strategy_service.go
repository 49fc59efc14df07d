package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"financeApp/database"
	"financeApp/models"
	"financeApp/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Strategy представляет стратегию досрочного погашения
type Strategy string

const (
	StrategySnowball  Strategy = "snowball"  // сначала наименьший баланс
	StrategyAvalanche Strategy = "avalanche" // сначала наибольшая ставка
)

// DefaultSimulationCapMonths ограничивает симуляцию 50 годами.
// Превышение потолка означает, что портфель не погашается при текущем
// бюджете, и возвращается как отдельный исход, а не бесконечный цикл.
const DefaultSimulationCapMonths = 600

// TimelineMonth представляет агрегированный снимок одного месяца симуляции
type TimelineMonth struct {
	Month           int             `json:"month"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	ActiveDebts     int             `json:"active_debts"`
}

// StrategyTimeline представляет результат симуляции стратегии
type StrategyTimeline struct {
	Strategy      Strategy        `json:"strategy"`
	Months        int             `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	PayoffDate    time.Time       `json:"payoff_date"`
	Converged     bool            `json:"converged"` // false: не погашается при текущем бюджете
	Timeline      []TimelineMonth `json:"timeline"`
}

// DebtBrief представляет краткие сведения о долге в сводке
type DebtBrief struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Balance      decimal.Decimal `json:"balance"`
	InterestRate decimal.Decimal `json:"interest_rate"`
}

// DebtTypeGroup представляет агрегат по типу долга
type DebtTypeGroup struct {
	Count   int             `json:"count"`
	Balance decimal.Decimal `json:"balance"`
}

// DebtSummary представляет сводку по всем активным долгам пользователя
type DebtSummary struct {
	DebtCount            int                               `json:"debt_count"`
	TotalBalance         decimal.Decimal                   `json:"total_balance"`
	TotalMinimumPayments decimal.Decimal                   `json:"total_minimum_payments"`
	TotalMonthlyInterest decimal.Decimal                   `json:"total_monthly_interest"`
	ByType               map[models.DebtType]DebtTypeGroup `json:"by_type"`
	HighestRateDebt      *DebtBrief                        `json:"highest_rate_debt,omitempty"`
	Snowball             StrategyTimeline                  `json:"snowball"`
	Avalanche            StrategyTimeline                  `json:"avalanche"`
	SuggestedStrategy    Strategy                          `json:"suggested_strategy"`
}

// debtState — рабочий снимок долга внутри симуляции. Снимки копируются
// из месяца в месяц, исходные записи не изменяются.
type debtState struct {
	id         uint
	balance    decimal.Decimal
	rate       decimal.Decimal // месячная ставка в долях
	minPayment decimal.Decimal
	origRate   decimal.Decimal
}

// orderStates сортирует рабочий набор по приоритету стратегии.
// Порядок пересчитывается каждый месяц для обеих стратегий, чтобы
// исключить ошибки устаревшего порядка.
func orderStates(states []debtState, strategy Strategy) []debtState {
	ordered := make([]debtState, len(states))
	copy(ordered, states)

	switch strategy {
	case StrategySnowball:
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].balance.Equal(ordered[j].balance) {
				return ordered[i].origRate.GreaterThan(ordered[j].origRate)
			}
			return ordered[i].balance.LessThan(ordered[j].balance)
		})
	default: // Avalanche
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].origRate.Equal(ordered[j].origRate) {
				return ordered[i].balance.LessThan(ordered[j].balance)
			}
			return ordered[i].origRate.GreaterThan(ordered[j].origRate)
		})
	}
	return ordered
}

// SimulateStrategy симулирует погашение портфеля долгов при фиксированном
// ежемесячном бюджете сверх минимальных платежей. Функция чистая:
// работает на снимках и не изменяет переданные записи.
func SimulateStrategy(debts []models.Debt, strategy Strategy, monthlyExtraBudget decimal.Decimal, startDate time.Time, capMonths int) StrategyTimeline {
	if capMonths <= 0 {
		capMonths = DefaultSimulationCapMonths
	}
	if strategy != StrategySnowball {
		strategy = StrategyAvalanche
	}

	// Рабочий набор: только активные долги с положительным балансом
	working := make([]debtState, 0, len(debts))
	for _, d := range debts {
		if !d.IsActive || !d.Balance.IsPositive() {
			continue
		}
		monthlyRate := d.InterestRate.
			Div(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(12))
		working = append(working, debtState{
			id:         d.ID,
			balance:    d.Balance,
			rate:       monthlyRate,
			minPayment: d.MinimumPayment,
			origRate:   d.InterestRate,
		})
	}

	result := StrategyTimeline{
		Strategy:      strategy,
		TotalInterest: decimal.Zero,
		PayoffDate:    startDate,
		Timeline:      make([]TimelineMonth, 0, 24),
	}
	if len(working) == 0 {
		result.Converged = true
		return result
	}

	for month := 1; month <= capMonths; month++ {
		// Приоритет месяца определяется по балансам на его начало
		ordered := orderStates(working, strategy)
		priorityID := ordered[0].id

		monthInterest := decimal.Zero
		monthPaid := decimal.Zero
		next := make([]debtState, 0, len(working))

		for _, st := range working {
			// Начисляем проценты и списываем минимальный платеж,
			// округление — один раз за месяц
			interest := st.balance.Mul(st.rate).Round(2)
			st.balance = st.balance.Add(interest)
			monthInterest = monthInterest.Add(interest)

			pay := st.minPayment
			if pay.GreaterThan(st.balance) {
				pay = st.balance
			}
			st.balance = st.balance.Sub(pay)
			monthPaid = monthPaid.Add(pay)

			next = append(next, st)
		}

		// Весь бюджет достается единственному приоритетному долгу.
		// Если он погашен минимальным платежом, остаток бюджета в этом
		// месяце не переходит на следующий долг.
		if monthlyExtraBudget.IsPositive() {
			for i := range next {
				if next[i].id != priorityID {
					continue
				}
				extra := monthlyExtraBudget
				if extra.GreaterThan(next[i].balance) {
					extra = next[i].balance
				}
				next[i].balance = next[i].balance.Sub(extra)
				monthPaid = monthPaid.Add(extra)
				break
			}
		}

		// Убираем погашенные долги из рабочего набора
		working = working[:0]
		totalBalance := decimal.Zero
		for _, st := range next {
			if st.balance.IsPositive() {
				working = append(working, st)
				totalBalance = totalBalance.Add(st.balance)
			}
		}

		result.TotalInterest = result.TotalInterest.Add(monthInterest)
		result.Timeline = append(result.Timeline, TimelineMonth{
			Month:           month,
			TotalBalance:    totalBalance,
			InterestAccrued: monthInterest,
			TotalPaid:       monthPaid,
			ActiveDebts:     len(working),
		})

		if len(working) == 0 {
			result.Months = month
			result.PayoffDate = startDate.AddDate(0, month, 0)
			result.Converged = true
			return result
		}
	}

	// Потолок достигнут: портфель не погашается при текущем бюджете
	result.Months = capMonths
	result.PayoffDate = startDate.AddDate(0, capMonths, 0)
	result.Converged = false
	return result
}

// StrategyService предоставляет методы расчета сводки и сравнения стратегий
type StrategyService struct {
	db                 *gorm.DB
	cache              *database.Cache
	monthlyExtraBudget decimal.Decimal
	capMonths          int
}

// NewStrategyService создает новый экземпляр StrategyService.
// cache может быть nil — тогда сводки считаются на каждый запрос.
func NewStrategyService(db *gorm.DB, cache *database.Cache, monthlyExtraBudget float64, capMonths int) *StrategyService {
	if capMonths <= 0 {
		capMonths = DefaultSimulationCapMonths
	}
	return &StrategyService{
		db:                 db,
		cache:              cache,
		monthlyExtraBudget: decimal.NewFromFloat(monthlyExtraBudget).Round(2),
		capMonths:          capMonths,
	}
}

// GetDebtSummary собирает сводку по активным долгам пользователя:
// итоги, разбивку по типам, самый дорогой долг и сравнение стратегий
func (s *StrategyService) GetDebtSummary(ctx context.Context, userID uint) (*DebtSummary, error) {
	// Сначала пробуем кеш; промах и ошибки кеша не фатальны
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, database.SummaryKey(userID)); ok {
			var summary DebtSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
			utils.LogError("Не удалось разобрать кешированную сводку пользователя %d", userID)
		}
	}

	var debts []models.Debt
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&debts).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("ошибка при получении долгов пользователя")
		}
	}

	summary := &DebtSummary{
		DebtCount:            len(debts),
		TotalBalance:         decimal.Zero,
		TotalMinimumPayments: decimal.Zero,
		TotalMonthlyInterest: decimal.Zero,
		ByType:               make(map[models.DebtType]DebtTypeGroup),
	}

	for _, d := range debts {
		summary.TotalBalance = summary.TotalBalance.Add(d.Balance)
		summary.TotalMinimumPayments = summary.TotalMinimumPayments.Add(d.MinimumPayment)

		monthlyInterest := d.Balance.
			Mul(d.InterestRate).
			Div(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(12)).
			Round(2)
		summary.TotalMonthlyInterest = summary.TotalMonthlyInterest.Add(monthlyInterest)

		group := summary.ByType[d.Type]
		group.Count++
		group.Balance = group.Balance.Add(d.Balance)
		summary.ByType[d.Type] = group

		if summary.HighestRateDebt == nil || d.InterestRate.GreaterThan(summary.HighestRateDebt.InterestRate) {
			summary.HighestRateDebt = &DebtBrief{
				ID:           d.ID,
				Name:         d.Name,
				Balance:      d.Balance,
				InterestRate: d.InterestRate,
			}
		}
	}

	start := time.Now()
	now := time.Now()
	summary.Snowball = SimulateStrategy(debts, StrategySnowball, s.monthlyExtraBudget, now, s.capMonths)
	summary.Avalanche = SimulateStrategy(debts, StrategyAvalanche, s.monthlyExtraBudget, now, s.capMonths)
	utils.GetMetrics().RecordSimulation(time.Since(start), nil)

	// Лавина математически не хуже, поэтому при равенстве выбираем ее
	if summary.Avalanche.TotalInterest.LessThanOrEqual(summary.Snowball.TotalInterest) {
		summary.SuggestedStrategy = StrategyAvalanche
	} else {
		summary.SuggestedStrategy = StrategySnowball
	}

	// Кладем результат в кеш; ошибка кеша не прерывает запрос
	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, database.SummaryKey(userID), string(payload)); err != nil {
				utils.LogError("Не удалось сохранить сводку пользователя %d в кеш: %v", userID, err)
			}
		}
	}

	return summary, nil
}

// InvalidateSummary сбрасывает кешированную сводку пользователя.
// Вызывается после любой операции, меняющей состояние долгов.
func (s *StrategyService) InvalidateSummary(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, database.SummaryKey(userID)); err != nil {
		utils.LogError("Не удалось сбросить кеш сводки пользователя %d: %v", userID, err)
	}
}
