package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBuildAmortizationSchedule(t *testing.T) {
	debt := newTestDebt(1200, 1200, 12, 200)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	schedule, err := BuildAmortizationSchedule(debt, decimal.Zero, start, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !schedule.FullyAmortized {
		t.Error("expected schedule to be fully amortized")
	}
	if schedule.Months != len(schedule.Rows) {
		t.Errorf("months field mismatch: got %v want %v", schedule.Months, len(schedule.Rows))
	}
	if len(schedule.Rows) == 0 {
		t.Fatal("expected at least one schedule row")
	}

	// Сумма платежей в счет основного долга равна исходному балансу
	principalSum := decimal.Zero
	for _, row := range schedule.Rows {
		principalSum = principalSum.Add(row.Principal)
	}
	if !principalSum.Equal(debt.Balance) {
		t.Errorf("principal sum: got %v want %v", principalSum, debt.Balance)
	}

	// Остаток в последней строке равен нулю
	last := schedule.Rows[len(schedule.Rows)-1]
	if !last.RemainingBalance.IsZero() {
		t.Errorf("final balance: got %v want 0", last.RemainingBalance)
	}

	// Даты платежей идут помесячно от точки отсчета
	if want := start.AddDate(0, 1, 0); !schedule.Rows[0].Date.Equal(want) {
		t.Errorf("first payment date: got %v want %v", schedule.Rows[0].Date, want)
	}

	// Накопленные проценты в последней строке совпадают с итогом
	if !last.CumulativeInterest.Equal(schedule.TotalInterest) {
		t.Errorf("cumulative interest: got %v want %v", last.CumulativeInterest, schedule.TotalInterest)
	}
}

func TestBuildAmortizationScheduleWithExtraPayment(t *testing.T) {
	debt := newTestDebt(5000, 5000, 18.5, 150)
	start := time.Now()

	base, err := BuildAmortizationSchedule(debt, decimal.Zero, start, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	accelerated, err := BuildAmortizationSchedule(debt, decimal.NewFromInt(50), start, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Доплата сокращает срок и суммарные проценты
	if accelerated.Months >= base.Months {
		t.Errorf("accelerated months %v not less than base %v", accelerated.Months, base.Months)
	}
	if !accelerated.TotalInterest.LessThan(base.TotalInterest) {
		t.Errorf("accelerated interest %v not less than base %v",
			accelerated.TotalInterest, base.TotalInterest)
	}
}

func TestBuildAmortizationScheduleCap(t *testing.T) {
	// Платеж меньше процентов: баланс растет, график обрезается потолком
	debt := newTestDebt(1000, 1000, 30, 10)

	schedule, err := BuildAmortizationSchedule(debt, decimal.Zero, time.Now(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schedule.FullyAmortized {
		t.Error("expected schedule to not be fully amortized")
	}
	if schedule.Months != DefaultScheduleCapMonths {
		t.Errorf("months: got %v want %v", schedule.Months, DefaultScheduleCapMonths)
	}

	// Остаток у потолка выше исходного баланса
	last := schedule.Rows[len(schedule.Rows)-1]
	if !last.RemainingBalance.GreaterThan(debt.Balance) {
		t.Errorf("expected balance to grow: got %v", last.RemainingBalance)
	}
}

func TestBuildAmortizationScheduleNegativeExtra(t *testing.T) {
	debt := newTestDebt(1000, 1000, 12, 100)

	_, err := BuildAmortizationSchedule(debt, decimal.NewFromInt(-10), time.Now(), 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculateSavings(t *testing.T) {
	debt := newTestDebt(5000, 5000, 18.5, 150)

	savings, err := CalculateSavings(debt, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if savings.BaseMonths != 48 {
		t.Errorf("base months: got %v want %v", savings.BaseMonths, 48)
	}
	if savings.AcceleratedMonths != 32 {
		t.Errorf("accelerated months: got %v want %v", savings.AcceleratedMonths, 32)
	}
	if savings.MonthsSaved != 16 {
		t.Errorf("months saved: got %v want %v", savings.MonthsSaved, 16)
	}

	// Экономия процентов: 2200 - 1400
	if want := decimal.NewFromInt(800); !savings.InterestSaved.Equal(want) {
		t.Errorf("interest saved: got %v want %v", savings.InterestSaved, want)
	}

	// Сокращение срока: 16 / 48 * 100
	if want := decimal.NewFromFloat(33.33); !savings.PayoffTimeReductionPercent.Equal(want) {
		t.Errorf("reduction percent: got %v want %v", savings.PayoffTimeReductionPercent, want)
	}
}

func TestCalculateSavingsNotComputable(t *testing.T) {
	// Минимальный платеж не покрывает проценты
	debt := newTestDebt(1000, 1000, 30, 10)

	_, err := CalculateSavings(debt, decimal.NewFromInt(5))
	if !errors.Is(err, ErrNotComputable) {
		t.Errorf("expected ErrNotComputable, got %v", err)
	}
}

func TestCalculateSavingsInvalidExtra(t *testing.T) {
	debt := newTestDebt(1000, 1000, 12, 100)

	_, err := CalculateSavings(debt, decimal.Zero)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
