package services

import "errors"

// Ошибки движка долгов. Контроллеры сопоставляют их с HTTP-статусами.
var (
	ErrDebtNotFound      = errors.New("долг не найден")
	ErrAccountNotFound   = errors.New("счет не найден")
	ErrInvalidInput      = errors.New("некорректные входные данные")
	ErrNotComputable     = errors.New("расчет невозможен: минимальный платеж не покрывает проценты")
	ErrInsufficientFunds = errors.New("недостаточно средств на счете")
)
