package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"auction-house/internal/domain"
	"auction-house/internal/services"
	"auction-house/pkg/guard"
	"auction-house/pkg/logger"
)

// callerHeader carries the acting identity. Real deployments would put an
// auth middleware in front; the core re-checks roles regardless.
const callerHeader = "X-Auction-Caller"

type HouseHandler struct {
	house   *services.AuctionHouse
	history domain.HistoryStore
	log     logger.Logger
}

func NewHouseHandler(house *services.AuctionHouse, history domain.HistoryStore, log logger.Logger) *HouseHandler {
	return &HouseHandler{
		house:   house,
		history: history,
		log:     log,
	}
}

type PlaceBidRequest struct {
	ItemID uint64 `json:"item_id"`
	Bidder string `json:"bidder"`
	Amount uint64 `json:"amount"`
}

type PlaceBidResponse struct {
	ReceiptID string    `json:"receipt_id"`
	ItemID    uint64    `json:"item_id"`
	Amount    uint64    `json:"amount"`
	Extended  bool      `json:"extended"`
	EndTime   time.Time `json:"end_time"`
}

func (h *HouseHandler) PlaceBid(c echo.Context) error {
	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind bid request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Bidder == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bidder required"})
	}

	receipt, err := h.house.PlaceBid(c.Request().Context(), domain.Address(req.Bidder), req.ItemID, req.Amount)
	if err != nil {
		h.log.Info("Bid rejected", "bidder", req.Bidder, "amount", req.Amount, "error", err)
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, PlaceBidResponse{
		ReceiptID: receipt.ID,
		ItemID:    receipt.ItemID,
		Amount:    receipt.Amount,
		Extended:  receipt.Extended,
		EndTime:   h.house.Auction().EndTime,
	})
}

func (h *HouseHandler) GetAuction(c echo.Context) error {
	state := h.house.Auction()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"auction": state,
		"paused":  h.house.Paused(),
		"version": h.house.Version(),
	})
}

func (h *HouseHandler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.house.Settings())
}

type UpdateSettingsRequest struct {
	Duration        *uint64 `json:"duration,omitempty"`
	ReservePrice    *uint64 `json:"reserve_price,omitempty"`
	TimeBuffer      *uint64 `json:"time_buffer,omitempty"`
	MinBidIncrement *uint64 `json:"min_bid_increment,omitempty"`
	Treasury        *string `json:"treasury,omitempty"`
}

func (h *HouseHandler) UpdateSettings(c echo.Context) error {
	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	caller := h.caller(c)

	if req.Duration != nil {
		if err := h.house.SetDuration(ctx, caller, *req.Duration); err != nil {
			return h.errorResponse(c, err)
		}
	}
	if req.ReservePrice != nil {
		if err := h.house.SetReservePrice(ctx, caller, *req.ReservePrice); err != nil {
			return h.errorResponse(c, err)
		}
	}
	if req.TimeBuffer != nil {
		if err := h.house.SetTimeBuffer(ctx, caller, *req.TimeBuffer); err != nil {
			return h.errorResponse(c, err)
		}
	}
	if req.MinBidIncrement != nil {
		if err := h.house.SetMinBidIncrement(ctx, caller, *req.MinBidIncrement); err != nil {
			return h.errorResponse(c, err)
		}
	}
	if req.Treasury != nil {
		if err := h.house.SetTreasury(ctx, caller, domain.Address(*req.Treasury)); err != nil {
			return h.errorResponse(c, err)
		}
	}

	return c.JSON(http.StatusOK, h.house.Settings())
}

func (h *HouseHandler) Advance(c echo.Context) error {
	if err := h.house.Advance(c.Request().Context()); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"auction": h.house.Auction(),
		"paused":  h.house.Paused(),
	})
}

func (h *HouseHandler) Settle(c echo.Context) error {
	if err := h.house.Settle(c.Request().Context()); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"auction": h.house.Auction()})
}

func (h *HouseHandler) Pause(c echo.Context) error {
	if err := h.house.Pause(c.Request().Context(), h.caller(c)); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"paused": true})
}

func (h *HouseHandler) Unpause(c echo.Context) error {
	if err := h.house.Unpause(c.Request().Context(), h.caller(c)); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"paused":  h.house.Paused(),
		"auction": h.house.Auction(),
	})
}

func (h *HouseHandler) RecentBids(c echo.Context) error {
	receipts, err := h.history.RecentBids(c.Request().Context(), h.limit(c))
	if err != nil {
		h.log.Error("Failed to load bid history", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load bid history"})
	}
	return c.JSON(http.StatusOK, receipts)
}

func (h *HouseHandler) Rounds(c echo.Context) error {
	rounds, err := h.history.Rounds(c.Request().Context(), h.limit(c))
	if err != nil {
		h.log.Error("Failed to load round history", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load round history"})
	}
	return c.JSON(http.StatusOK, rounds)
}

func (h *HouseHandler) caller(c echo.Context) domain.Address {
	return domain.Address(c.Request().Header.Get(callerHeader))
}

func (h *HouseHandler) limit(c echo.Context) int {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	return limit
}

func (h *HouseHandler) errorResponse(c echo.Context, err error) error {
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrWrongRound),
		errors.Is(err, domain.ErrReserveNotMet),
		errors.Is(err, domain.ErrIncrementNotMet),
		errors.Is(err, domain.ErrValueTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoundOver),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrRoundNeverStarted),
		errors.Is(err, domain.ErrRoundStillActive),
		errors.Is(err, guard.ErrPaused),
		errors.Is(err, guard.ErrNotPaused),
		errors.Is(err, guard.ErrReentrantCall),
		errors.Is(err, domain.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidUpgrade):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
