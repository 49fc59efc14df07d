package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestApplyPaymentToDebt(t *testing.T) {
	debt := newTestDebt(1000, 500, 18.5, 50)
	debt.PaymentsMade = 3
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	updated := applyPaymentToDebt(debt, decimal.NewFromInt(200), date)

	if want := decimal.NewFromInt(300); !updated.Balance.Equal(want) {
		t.Errorf("balance: got %v want %v", updated.Balance, want)
	}
	if updated.PaymentsMade != 4 {
		t.Errorf("payments made: got %v want %v", updated.PaymentsMade, 4)
	}
	if !updated.IsActive {
		t.Error("expected debt to stay active")
	}

	// Следующая дата платежа сдвигается на месяц от даты платежа
	if updated.DueDate == nil {
		t.Fatal("expected due date to be set")
	}
	if want := date.AddDate(0, 1, 0); !updated.DueDate.Equal(want) {
		t.Errorf("due date: got %v want %v", updated.DueDate, want)
	}
}

func TestApplyPaymentToDebtOverpayment(t *testing.T) {
	// Платеж больше остатка: баланс обнуляется, долг закрывается
	debt := newTestDebt(1000, 150, 18.5, 50)
	debt.PaymentsMade = 17

	updated := applyPaymentToDebt(debt, decimal.NewFromInt(200), time.Now())

	if !updated.Balance.IsZero() {
		t.Errorf("balance: got %v want 0", updated.Balance)
	}
	if updated.IsActive {
		t.Error("expected debt to be closed")
	}
	if updated.PaymentsMade != 18 {
		t.Errorf("payments made: got %v want %v", updated.PaymentsMade, 18)
	}
}

func TestApplyPaymentToDebtClearsOverdue(t *testing.T) {
	debt := newTestDebt(1000, 500, 18.5, 50)
	debt.IsOverdue = true

	updated := applyPaymentToDebt(debt, decimal.NewFromInt(50), time.Now())

	if updated.IsOverdue {
		t.Error("expected overdue flag to be cleared")
	}
}

func TestApplyPaymentToDebtDoesNotMutateArgument(t *testing.T) {
	debt := newTestDebt(1000, 500, 18.5, 50)

	applyPaymentToDebt(debt, decimal.NewFromInt(200), time.Now())

	// Функция работает на копии снимка
	if !debt.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("debt balance mutated: got %v", debt.Balance)
	}
	if debt.PaymentsMade != 0 {
		t.Errorf("payments made mutated: got %v", debt.PaymentsMade)
	}
	if debt.DueDate != nil {
		t.Error("due date mutated on argument")
	}
}
