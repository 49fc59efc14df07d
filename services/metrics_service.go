package services

import (
	"math"

	"financeApp/models"

	"github.com/shopspring/decimal"
)

// DebtMetrics представляет расчетные показатели по одному долгу.
// Показатели не хранятся в базе и вычисляются на момент запроса.
type DebtMetrics struct {
	EstimatedPayoffMonths *int            `json:"estimated_payoff_months"`
	TotalInterest         decimal.Decimal `json:"total_interest"`
	MonthlyInterest       decimal.Decimal `json:"monthly_interest"`
	DailyInterest         decimal.Decimal `json:"daily_interest"`
	ProgressPercentage    decimal.Decimal `json:"progress_percentage"`
	TotalPaid             decimal.Decimal `json:"total_paid"`
	IsOnTrack             bool            `json:"is_on_track"`
}

// closedFormPayoff вычисляет срок погашения и суммарные проценты по
// закрытой формуле аннуитета:
//
//	n = ceil( ln(p / (p − b·r)) / ln(1 + r) )
//
// Возвращает ok=false, если платеж не покрывает начисляемые проценты —
// в этом случае формула расходится и числового результата нет.
func closedFormPayoff(balance, payment, monthlyRate float64) (months int, totalInterest float64, ok bool) {
	if balance <= 0 {
		return 0, 0, true
	}
	if payment <= 0 {
		return 0, 0, false
	}

	// Беспроцентный долг гасится равными долями
	if monthlyRate == 0 {
		return int(math.Ceil(balance / payment)), 0, true
	}

	// Платеж меньше или равен месячным процентам: баланс не убывает
	if payment <= balance*monthlyRate {
		return 0, 0, false
	}

	n := math.Ceil(math.Log(payment/(payment-balance*monthlyRate)) / math.Log(1+monthlyRate))
	months = int(n)
	totalInterest = math.Max(0, payment*n-balance)
	return months, totalInterest, true
}

// CalculateDebtMetrics вычисляет показатели по снимку долга.
// Функция чистая: не обращается к базе и не изменяет аргумент.
func CalculateDebtMetrics(debt models.Debt) DebtMetrics {
	metrics := DebtMetrics{
		TotalInterest:      decimal.Zero,
		MonthlyInterest:    decimal.Zero,
		DailyInterest:      decimal.Zero,
		ProgressPercentage: decimal.Zero,
		TotalPaid:          decimal.Zero,
	}

	annualRate := debt.InterestRate.Div(decimal.NewFromInt(100))
	monthlyRate := annualRate.Div(decimal.NewFromInt(12))

	// Текущие проценты за месяц и за день
	metrics.MonthlyInterest = debt.Balance.Mul(monthlyRate).Round(2)
	metrics.DailyInterest = debt.Balance.Mul(annualRate).Div(decimal.NewFromInt(365)).Round(2)

	// Прогресс погашения относительно исходной суммы
	if debt.Principal.IsPositive() {
		progress := debt.Principal.Sub(debt.Balance).
			Div(debt.Principal).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		metrics.ProgressPercentage = clampPercent(progress)
	}

	// Сумма, выплаченная в счет основного долга
	paid := debt.Principal.Sub(debt.Balance)
	if paid.IsPositive() {
		metrics.TotalPaid = paid
	}

	balance := debt.Balance.InexactFloat64()
	payment := debt.MinimumPayment.InexactFloat64()
	rate := monthlyRate.InexactFloat64()

	// Долг погашается, только если платеж превышает месячные проценты
	metrics.IsOnTrack = payment > balance*rate

	months, totalInterest, ok := closedFormPayoff(balance, payment, rate)
	if !ok {
		// Неамортизируемый случай: срок не определен, NaN наружу не отдаем
		metrics.IsOnTrack = false
		return metrics
	}

	metrics.EstimatedPayoffMonths = &months
	metrics.TotalInterest = decimal.NewFromFloat(totalInterest).Round(2)
	return metrics
}

// clampPercent ограничивает значение диапазоном от 0 до 100
func clampPercent(v decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if v.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if v.GreaterThan(hundred) {
		return hundred
	}
	return v
}
