package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/infrastructure/bank"
	"auction-house/pkg/logger"
)

func TestCreditEndpoint(t *testing.T) {
	ledger := bank.NewLedger(logger.NewNop())
	handler := NewBankHandler(ledger, logger.NewNop())

	rec := doJSON(t, handler.Credit, http.MethodPost, "/api/v1/bank/credit",
		`{"account":"alice","amount":500}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Account string `json:"account"`
		Balance uint64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Account)
	assert.Equal(t, uint64(500), resp.Balance)
	assert.Equal(t, uint64(500), ledger.Balance(context.Background(), "alice"))
}

func TestCreditEndpointValidation(t *testing.T) {
	ledger := bank.NewLedger(logger.NewNop())
	handler := NewBankHandler(ledger, logger.NewNop())

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing account", `{"amount":500}`, http.StatusBadRequest},
		{"zero amount", `{"account":"alice","amount":0}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, handler.Credit, http.MethodPost, "/api/v1/bank/credit", tc.body, "")
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	require.NoError(t, ledger.Credit("whale", math.MaxUint64))
	rec := doJSON(t, handler.Credit, http.MethodPost, "/api/v1/bank/credit",
		`{"account":"whale","amount":1}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "overflowing credit must be rejected")
}

func TestBalanceEndpoint(t *testing.T) {
	ledger := bank.NewLedger(logger.NewNop())
	require.NoError(t, ledger.Credit("alice", 250))
	handler := NewBankHandler(ledger, logger.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bank/balance/alice", strings.NewReader(""))
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("account")
	ctx.SetParamValues("alice")
	require.NoError(t, handler.Balance(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Balance uint64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(250), resp.Balance)
}
