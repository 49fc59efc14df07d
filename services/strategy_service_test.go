package services

import (
	"testing"
	"time"

	"financeApp/models"

	"github.com/shopspring/decimal"
)

func testPortfolio() []models.Debt {
	small := newTestDebt(1000, 1000, 5, 50)
	small.ID = 1
	small.Name = "Маленький долг"

	large := newTestDebt(5000, 5000, 20, 100)
	large.ID = 2
	large.Name = "Дорогой долг"

	return []models.Debt{small, large}
}

func TestOrderStatesSnowball(t *testing.T) {
	states := []debtState{
		{id: 2, balance: decimal.NewFromInt(5000), origRate: decimal.NewFromInt(20)},
		{id: 1, balance: decimal.NewFromInt(1000), origRate: decimal.NewFromInt(5)},
	}

	ordered := orderStates(states, StrategySnowball)

	// Снежный ком: сначала наименьший баланс
	if ordered[0].id != 1 || ordered[1].id != 2 {
		t.Errorf("snowball order: got [%v %v] want [1 2]", ordered[0].id, ordered[1].id)
	}
}

func TestOrderStatesAvalanche(t *testing.T) {
	states := []debtState{
		{id: 1, balance: decimal.NewFromInt(1000), origRate: decimal.NewFromInt(5)},
		{id: 2, balance: decimal.NewFromInt(5000), origRate: decimal.NewFromInt(20)},
	}

	ordered := orderStates(states, StrategyAvalanche)

	// Лавина: сначала наибольшая ставка
	if ordered[0].id != 2 || ordered[1].id != 1 {
		t.Errorf("avalanche order: got [%v %v] want [2 1]", ordered[0].id, ordered[1].id)
	}
}

func TestOrderStatesTieBreak(t *testing.T) {
	states := []debtState{
		{id: 1, balance: decimal.NewFromInt(1000), origRate: decimal.NewFromInt(5)},
		{id: 2, balance: decimal.NewFromInt(1000), origRate: decimal.NewFromInt(20)},
	}

	// При равных балансах снежный ком берет долг с большей ставкой
	ordered := orderStates(states, StrategySnowball)
	if ordered[0].id != 2 {
		t.Errorf("snowball tie break: got %v want 2", ordered[0].id)
	}

	// При равных ставках лавина берет долг с меньшим балансом
	states = []debtState{
		{id: 1, balance: decimal.NewFromInt(5000), origRate: decimal.NewFromInt(10)},
		{id: 2, balance: decimal.NewFromInt(1000), origRate: decimal.NewFromInt(10)},
	}
	ordered = orderStates(states, StrategyAvalanche)
	if ordered[0].id != 2 {
		t.Errorf("avalanche tie break: got %v want 2", ordered[0].id)
	}
}

func TestSimulateStrategy(t *testing.T) {
	debts := testPortfolio()
	budget := decimal.NewFromInt(500)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	snowball := SimulateStrategy(debts, StrategySnowball, budget, start, 0)
	avalanche := SimulateStrategy(debts, StrategyAvalanche, budget, start, 0)

	if !snowball.Converged {
		t.Fatal("expected snowball to converge")
	}
	if !avalanche.Converged {
		t.Fatal("expected avalanche to converge")
	}

	// Лавина не дороже снежного кома по процентам
	if avalanche.TotalInterest.GreaterThan(snowball.TotalInterest) {
		t.Errorf("avalanche interest %v exceeds snowball %v",
			avalanche.TotalInterest, snowball.TotalInterest)
	}
	if avalanche.Months > snowball.Months {
		t.Errorf("avalanche months %v exceeds snowball %v", avalanche.Months, snowball.Months)
	}

	// Дата погашения сдвинута на число месяцев симуляции
	if want := start.AddDate(0, snowball.Months, 0); !snowball.PayoffDate.Equal(want) {
		t.Errorf("payoff date: got %v want %v", snowball.PayoffDate, want)
	}

	// Хронология покрывает каждый месяц до погашения
	if len(snowball.Timeline) != snowball.Months {
		t.Errorf("timeline length: got %v want %v", len(snowball.Timeline), snowball.Months)
	}
	last := snowball.Timeline[len(snowball.Timeline)-1]
	if !last.TotalBalance.IsZero() {
		t.Errorf("final total balance: got %v want 0", last.TotalBalance)
	}
	if last.ActiveDebts != 0 {
		t.Errorf("final active debts: got %v want 0", last.ActiveDebts)
	}
}

func TestSimulateStrategyNotConverging(t *testing.T) {
	// Проценты превышают все платежи: портфель не погашается
	debt := newTestDebt(100000, 100000, 30, 100)
	debt.ID = 1

	result := SimulateStrategy([]models.Debt{debt}, StrategyAvalanche, decimal.NewFromInt(50), time.Now(), 0)

	if result.Converged {
		t.Error("expected simulation to not converge")
	}
	if result.Months != DefaultSimulationCapMonths {
		t.Errorf("months: got %v want %v", result.Months, DefaultSimulationCapMonths)
	}
}

func TestSimulateStrategyEmptyPortfolio(t *testing.T) {
	result := SimulateStrategy(nil, StrategySnowball, decimal.NewFromInt(500), time.Now(), 0)

	if !result.Converged {
		t.Error("expected empty portfolio to converge")
	}
	if result.Months != 0 {
		t.Errorf("months: got %v want 0", result.Months)
	}
}

func TestSimulateStrategySkipsInactiveDebts(t *testing.T) {
	debts := testPortfolio()
	debts[1].IsActive = false

	result := SimulateStrategy(debts, StrategySnowball, decimal.NewFromInt(500), time.Now(), 0)

	// Неактивный долг не участвует в симуляции
	if result.Timeline[0].ActiveDebts > 1 {
		t.Errorf("active debts: got %v want at most 1", result.Timeline[0].ActiveDebts)
	}
}

func TestSimulateStrategyPure(t *testing.T) {
	debts := testPortfolio()

	SimulateStrategy(debts, StrategySnowball, decimal.NewFromInt(500), time.Now(), 0)

	// Исходные записи не изменяются симуляцией
	if !debts[0].Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("debt balance mutated: got %v", debts[0].Balance)
	}
	if !debts[1].Balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("debt balance mutated: got %v", debts[1].Balance)
	}
}
