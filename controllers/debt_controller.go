package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"financeApp/config"
	"financeApp/database"
	"financeApp/services"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// DebtController обрабатывает запросы, связанные с долгами
type DebtController struct {
	debtService     *services.DebtService
	scheduleService *services.ScheduleService
	strategyService *services.StrategyService
	paymentService  *services.PaymentService
}

// NewDebtController создает новый экземпляр DebtController
func NewDebtController(db *database.Database, cache *database.Cache, cfg *config.Config, email *services.EmailService) *DebtController {
	strategyService := services.NewStrategyService(db.DB, cache, cfg.Debt.MonthlyExtraBudget, cfg.Debt.SimulationCapMonths)

	return &DebtController{
		debtService:     services.NewDebtService(db.DB, cfg, strategyService),
		scheduleService: services.NewScheduleService(db.DB, cfg.Debt.ScheduleCapMonths),
		strategyService: strategyService,
		paymentService:  services.NewPaymentService(db.DB, email, strategyService),
	}
}

// writeJSON отправляет JSON-ответ
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError сопоставляет ошибки сервисов с HTTP-статусами
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDebtNotFound), errors.Is(err, services.ErrAccountNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotComputable), errors.Is(err, services.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// userIDFromContext получает ID пользователя из контекста запроса
func userIDFromContext(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// debtIDFromPath получает ID долга из URL
func debtIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	debtID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid debt ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(debtID), true
}

// extraPaymentFromQuery читает необязательную доплату из query-параметра
func extraPaymentFromQuery(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	raw := r.URL.Query().Get("extra_payment")
	if raw == "" {
		return decimal.Zero, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		http.Error(w, "Invalid extra_payment", http.StatusBadRequest)
		return decimal.Zero, false
	}
	return value, true
}

// CreateDebt обрабатывает запрос на создание долга
func (c *DebtController) CreateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var dto services.CreateDebtDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.UserID = userID

	debt, err := c.debtService.Create(r.Context(), dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, debt)
}

// GetDebts обрабатывает запрос на получение списка долгов пользователя
func (c *DebtController) GetDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	debts, err := c.debtService.GetDebtsByUserID(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, debts)
}

// GetDebt обрабатывает запрос на получение долга с показателями
func (c *DebtController) GetDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	debtID, ok := debtIDFromPath(w, r)
	if !ok {
		return
	}

	debt, err := c.debtService.GetDebtByID(debtID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, debt)
}

// UpdateDebt обрабатывает запрос на изменение долга
func (c *DebtController) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	debtID, ok := debtIDFromPath(w, r)
	if !ok {
		return
	}

	var dto services.UpdateDebtDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	debt, err := c.debtService.Update(r.Context(), debtID, userID, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, debt)
}

// DeleteDebt обрабатывает запрос на удаление долга
func (c *DebtController) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	debtID, ok := debtIDFromPath(w, r)
	if !ok {
		return
	}

	if err := c.debtService.Delete(r.Context(), debtID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSchedule обрабатывает запрос на график амортизации долга
func (c *DebtController) GetSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	debtID, ok := debtIDFromPath(w, r)
	if !ok {
		return
	}
	extraPayment, ok := extraPaymentFromQuery(w, r)
	if !ok {
		return
	}

	schedule, err := c.scheduleService.GenerateSchedule(debtID, userID, extraPayment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// GetSavings обрабатывает запрос на расчет выгоды от доплаты
func (c *DebtController) GetSavings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	debtID, ok := debtIDFromPath(w, r)
	if !ok {
		return
	}
	extraPayment, ok := extraPaymentFromQuery(w, r)
	if !ok {
		return
	}

	debt, err := c.debtService.GetDebtSnapshot(debtID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	savings, err := services.CalculateSavings(*debt, extraPayment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, savings)
}

// GetSummary обрабатывает запрос на сводку по долгам пользователя
func (c *DebtController) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	summary, err := c.strategyService.GetDebtSummary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// PayDebt обрабатывает запрос на платеж по долгу
func (c *DebtController) PayDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	debtID, ok := debtIDFromPath(w, r)
	if !ok {
		return
	}

	var dto services.MakePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.DebtID = debtID
	dto.UserID = userID
	if dto.Date.IsZero() {
		dto.Date = time.Now()
	}

	result, err := c.paymentService.MakePayment(r.Context(), dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
