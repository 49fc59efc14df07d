package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"financeApp/database"
	"financeApp/models"
	"financeApp/services"

	"github.com/gorilla/mux"
)

// AccountController обрабатывает запросы, связанные со счетами
type AccountController struct {
	accountService *services.AccountService
}

// NewAccountController создает новый экземпляр AccountController
func NewAccountController(db *database.Database) *AccountController {
	return &AccountController{
		accountService: services.NewAccountService(db.DB),
	}
}

// CreateAccount обрабатывает запрос на создание счета
func (c *AccountController) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var dto services.CreateAccountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.UserID = userID

	account, err := c.accountService.CreateAccount(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// GetAccounts обрабатывает запрос на получение счетов пользователя
func (c *AccountController) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	accounts, err := c.accountService.GetAllByUserId(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

// GetAccount обрабатывает запрос на получение одного счета
func (c *AccountController) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	accountID, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	account, err := c.accountService.GetById(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Чужой счет неотличим от несуществующего
	if account.HolderID != userID {
		writeServiceError(w, services.ErrAccountNotFound)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// accountIDFromPath получает ID счета из URL
func accountIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	accountID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(accountID), true
}

// Deposit обрабатывает запрос на пополнение счета
func (c *AccountController) Deposit(w http.ResponseWriter, r *http.Request) {
	c.applyTransaction(w, r, false)
}

// Withdraw обрабатывает запрос на списание со счета
func (c *AccountController) Withdraw(w http.ResponseWriter, r *http.Request) {
	c.applyTransaction(w, r, true)
}

func (c *AccountController) applyTransaction(w http.ResponseWriter, r *http.Request, withdraw bool) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	accountID, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	var dto services.AccountTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dto.AccountID = accountID
	dto.UserID = userID

	var account *models.Account
	var err error
	if withdraw {
		account, err = c.accountService.Withdraw(dto)
	} else {
		account, err = c.accountService.Deposit(dto)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}
