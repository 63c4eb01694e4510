package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// Bank is the slice of the native ledger the ops endpoints need: a faucet to
// fund bidder accounts and a balance view.
type Bank interface {
	Credit(account domain.Address, amount uint64) error
	Balance(ctx context.Context, account domain.Address) uint64
}

type BankHandler struct {
	bank Bank
	log  logger.Logger
}

func NewBankHandler(bank Bank, log logger.Logger) *BankHandler {
	return &BankHandler{bank: bank, log: log}
}

type CreditRequest struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

// Credit funds an account out of thin air so the service can be exercised end
// to end. In a deployment fronted by a real payment rail this route stays off.
func (h *BankHandler) Credit(c echo.Context) error {
	var req CreditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Account == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "account required"})
	}
	if req.Amount == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
	}

	account := domain.Address(req.Account)
	if err := h.bank.Credit(account, req.Amount); err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}

	h.log.Info("Account credited", "account", account, "amount", req.Amount)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"account": account,
		"balance": h.bank.Balance(c.Request().Context(), account),
	})
}

func (h *BankHandler) Balance(c echo.Context) error {
	account := domain.Address(c.Param("account"))
	if account.IsZero() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "account required"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"account": account,
		"balance": h.bank.Balance(c.Request().Context(), account),
	})
}
