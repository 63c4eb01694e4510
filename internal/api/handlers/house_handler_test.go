package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/domain"
	"auction-house/internal/infrastructure/access"
	"auction-house/internal/infrastructure/bank"
	"auction-house/internal/infrastructure/registry"
	"auction-house/internal/services"
	"auction-house/pkg/logger"
)

type stubHistory struct{}

func (stubHistory) RecentBids(context.Context, int) ([]*domain.BidReceipt, error) { return nil, nil }
func (stubHistory) Rounds(context.Context, int) ([]*domain.RoundRecord, error)    { return nil, nil }

// newTestHandler wires a running house with a live round and a funded bidder.
func newTestHandler(t *testing.T) (*HouseHandler, *services.AuctionHouse) {
	t.Helper()
	log := logger.NewNop()
	ledger := bank.NewLedger(log)
	wrapped := bank.NewWrappedCoin(ledger, "wrapped-custody")
	tokens := registry.NewTokenRegistry(0, log)
	manager := access.NewUpgradeManager("deployer")
	roles := access.NewOwnable("deployer")

	house := services.NewAuctionHouse("house-escrow", ledger, wrapped, manager,
		20*time.Millisecond, nil, log)
	require.NoError(t, house.Initialize("deployer", tokens, roles, domain.AuctionSettings{
		Duration:        3600,
		ReservePrice:    100,
		Treasury:        "treasury",
		TimeBuffer:      300,
		MinBidIncrement: 10,
	}))
	require.NoError(t, house.Unpause(context.Background(), "deployer"))

	ledger.Credit("alice", 10_000)
	return NewHouseHandler(house, stubHistory{}, log), house
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, target, body, caller string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(callerHeader, caller)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestPlaceBidEndpoint(t *testing.T) {
	handler, house := newTestHandler(t)
	itemID := house.Auction().ItemID

	rec := doJSON(t, handler.PlaceBid, http.MethodPost, "/api/v1/bids",
		`{"item_id":1,"bidder":"alice","amount":150}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp PlaceBidResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, itemID, resp.ItemID)
	assert.Equal(t, uint64(150), resp.Amount)
	assert.NotEmpty(t, resp.ReceiptID)

	assert.Equal(t, domain.Address("alice"), house.Auction().HighestBidder)
}

func TestPlaceBidEndpointErrorMapping(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing bidder", `{"item_id":1,"amount":150}`, http.StatusBadRequest},
		{"wrong round", `{"item_id":99,"bidder":"alice","amount":150}`, http.StatusBadRequest},
		{"below reserve", `{"item_id":1,"bidder":"alice","amount":10}`, http.StatusBadRequest},
		{"unfunded bidder", `{"item_id":1,"bidder":"pauper","amount":150}`, http.StatusPaymentRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, handler.PlaceBid, http.MethodPost, "/api/v1/bids", tc.body, "")
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestPauseEndpointAuthorization(t *testing.T) {
	handler, house := newTestHandler(t)

	// Ownership moved to the treasury when the first round opened.
	rec := doJSON(t, handler.Pause, http.MethodPost, "/api/v1/auction/pause", "", "deployer")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, handler.Pause, http.MethodPost, "/api/v1/auction/pause", "", "treasury")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, house.Paused())
}

func TestAdvanceEndpointWhileActive(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Advance, http.MethodPost, "/api/v1/auction/advance", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateSettingsEndpoint(t *testing.T) {
	handler, house := newTestHandler(t)

	rec := doJSON(t, handler.UpdateSettings, http.MethodPatch, "/api/v1/settings",
		`{"reserve_price":500}`, "alice")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, handler.UpdateSettings, http.MethodPatch, "/api/v1/settings",
		`{"reserve_price":500,"min_bid_increment":20}`, "treasury")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	settings := house.Settings()
	assert.Equal(t, uint64(500), settings.ReservePrice)
	assert.Equal(t, uint8(20), settings.MinBidIncrement)

	rec = doJSON(t, handler.UpdateSettings, http.MethodPatch, "/api/v1/settings",
		`{"min_bid_increment":300}`, "treasury")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAuctionEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.GetAuction, http.MethodGet, "/api/v1/auction", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "auction")
	assert.Contains(t, resp, "paused")
}
