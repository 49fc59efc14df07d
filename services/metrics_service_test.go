package services

import (
	"testing"

	"financeApp/models"

	"github.com/shopspring/decimal"
)

func newTestDebt(principal, balance, rate, minPayment float64) models.Debt {
	return models.Debt{
		Name:           "Тестовый долг",
		Type:           models.DebtTypeLoan,
		Principal:      decimal.NewFromFloat(principal),
		Balance:        decimal.NewFromFloat(balance),
		InterestRate:   decimal.NewFromFloat(rate),
		MinimumPayment: decimal.NewFromFloat(minPayment),
		IsActive:       true,
	}
}

func TestClosedFormPayoff(t *testing.T) {
	// Кредит 5000 под 18.5% годовых с платежом 150 в месяц
	months, totalInterest, ok := closedFormPayoff(5000, 150, 0.185/12)
	if !ok {
		t.Fatal("expected payoff to be computable")
	}
	if months != 48 {
		t.Errorf("months: got %v want %v", months, 48)
	}
	// Суммарные проценты: 150 * 48 - 5000
	if want := 2200.0; totalInterest != want {
		t.Errorf("total interest: got %v want %v", totalInterest, want)
	}
}

func TestClosedFormPayoffZeroRate(t *testing.T) {
	// Беспроцентный долг гасится равными долями
	months, totalInterest, ok := closedFormPayoff(1000, 100, 0)
	if !ok {
		t.Fatal("expected payoff to be computable")
	}
	if months != 10 {
		t.Errorf("months: got %v want %v", months, 10)
	}
	if totalInterest != 0 {
		t.Errorf("total interest: got %v want 0", totalInterest)
	}
}

func TestClosedFormPayoffNotAmortizing(t *testing.T) {
	// Платеж 10 меньше месячных процентов 25: формула расходится
	_, _, ok := closedFormPayoff(1000, 10, 0.30/12)
	if ok {
		t.Error("expected payoff to be not computable")
	}
}

func TestCalculateDebtMetrics(t *testing.T) {
	debt := newTestDebt(6000, 5000, 18.5, 150)

	metrics := CalculateDebtMetrics(debt)

	if metrics.EstimatedPayoffMonths == nil {
		t.Fatal("expected estimated payoff months to be set")
	}
	if *metrics.EstimatedPayoffMonths != 48 {
		t.Errorf("estimated payoff months: got %v want %v", *metrics.EstimatedPayoffMonths, 48)
	}
	if !metrics.IsOnTrack {
		t.Error("expected debt to be on track")
	}

	// Месячные проценты: 5000 * 0.185 / 12 = 77.08
	if want := decimal.NewFromFloat(77.08); !metrics.MonthlyInterest.Equal(want) {
		t.Errorf("monthly interest: got %v want %v", metrics.MonthlyInterest, want)
	}

	// Прогресс: (6000 - 5000) / 6000 * 100 = 16.67
	if want := decimal.NewFromFloat(16.67); !metrics.ProgressPercentage.Equal(want) {
		t.Errorf("progress: got %v want %v", metrics.ProgressPercentage, want)
	}

	// Выплачено в счет основного долга: 6000 - 5000
	if want := decimal.NewFromInt(1000); !metrics.TotalPaid.Equal(want) {
		t.Errorf("total paid: got %v want %v", metrics.TotalPaid, want)
	}
}

func TestCalculateDebtMetricsNotAmortizing(t *testing.T) {
	// Платеж не покрывает проценты: срок не определен, NaN не отдаем
	debt := newTestDebt(1000, 1000, 30, 10)

	metrics := CalculateDebtMetrics(debt)

	if metrics.EstimatedPayoffMonths != nil {
		t.Errorf("estimated payoff months: got %v want nil", *metrics.EstimatedPayoffMonths)
	}
	if metrics.IsOnTrack {
		t.Error("expected debt to be off track")
	}

	// Проценты за месяц считаются и для неамортизируемого долга
	if want := decimal.NewFromInt(25); !metrics.MonthlyInterest.Equal(want) {
		t.Errorf("monthly interest: got %v want %v", metrics.MonthlyInterest, want)
	}
}

func TestCalculateDebtMetricsPaidOff(t *testing.T) {
	// Погашенный долг: прогресс 100%, срок ноль месяцев
	debt := newTestDebt(1000, 0, 18.5, 100)

	metrics := CalculateDebtMetrics(debt)

	if want := decimal.NewFromInt(100); !metrics.ProgressPercentage.Equal(want) {
		t.Errorf("progress: got %v want %v", metrics.ProgressPercentage, want)
	}
	if metrics.EstimatedPayoffMonths == nil || *metrics.EstimatedPayoffMonths != 0 {
		t.Errorf("estimated payoff months: got %v want 0", metrics.EstimatedPayoffMonths)
	}
	if want := decimal.NewFromInt(1000); !metrics.TotalPaid.Equal(want) {
		t.Errorf("total paid: got %v want %v", metrics.TotalPaid, want)
	}
}

func TestCalculateDebtMetricsPure(t *testing.T) {
	debt := newTestDebt(6000, 5000, 18.5, 150)

	first := CalculateDebtMetrics(debt)
	second := CalculateDebtMetrics(debt)

	// Повторный вызов на том же снимке дает тот же результат
	if *first.EstimatedPayoffMonths != *second.EstimatedPayoffMonths {
		t.Errorf("months differ between calls: %v vs %v",
			*first.EstimatedPayoffMonths, *second.EstimatedPayoffMonths)
	}
	if !first.TotalInterest.Equal(second.TotalInterest) {
		t.Errorf("total interest differs between calls: %v vs %v",
			first.TotalInterest, second.TotalInterest)
	}

	// Аргумент не изменяется
	if !debt.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("debt balance mutated: got %v", debt.Balance)
	}
}
