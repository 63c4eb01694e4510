package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/utils"
)

// PlaceBid validates and records a bid on the live round. The bid amount is
// pulled from the bidder into house escrow atomically with the call; any
// later failure pushes it straight back, so a rejected call leaves no trace.
func (h *AuctionHouse) PlaceBid(ctx context.Context, bidder domain.Address, itemID, amount uint64) (*domain.BidReceipt, error) {
	if err := h.guard.Enter(); err != nil {
		return nil, err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return nil, err
	}

	now := h.now()
	if itemID != h.state.ItemID {
		return nil, fmt.Errorf("%w: live item is %d, bid names %d", domain.ErrWrongRound, h.state.ItemID, itemID)
	}
	if h.state.Over(now) {
		return nil, domain.ErrRoundOver
	}

	prevBidder := h.state.HighestBidder
	prevBid := h.state.HighestBid
	if prevBidder.IsZero() {
		if amount < h.settings.ReservePrice {
			return nil, fmt.Errorf("%w: reserve is %d, bid %d", domain.ErrReserveNotMet, h.settings.ReservePrice, amount)
		}
	} else {
		minAcceptable, err := minAcceptableBid(prevBid, h.settings.MinBidIncrement)
		if err != nil {
			return nil, err
		}
		if amount < minAcceptable {
			return nil, fmt.Errorf("%w: minimum acceptable is %d, bid %d", domain.ErrIncrementNotMet, minAcceptable, amount)
		}
	}

	// The bid's funds enter custody with the call itself.
	if err := h.ledger.Move(ctx, bidder, h.account, amount); err != nil {
		return nil, err
	}

	// Refund the displaced bidder before recording, so the outgoing refund is
	// always the amount custody actually holds for them.
	if !prevBidder.IsZero() {
		if err := h.dispatcher.PayOut(ctx, prevBidder, prevBid); err != nil {
			if rbErr := h.ledger.Move(ctx, h.account, bidder, amount); rbErr != nil {
				h.log.Error("Failed to return escrowed bid after refund failure",
					"bidder", bidder, "amount", amount, "error", rbErr)
			}
			return nil, fmt.Errorf("refund to displaced bidder %s: %w", prevBidder, err)
		}
	}

	h.mu.Lock()
	h.state.HighestBid = amount
	h.state.HighestBidder = bidder

	// Anti-snipe: a bid landing inside the trailing buffer pushes the end
	// time out. The round-over check above guarantees now < endTime, so the
	// remaining window is never negative.
	extended := h.state.EndTime.Sub(now) < time.Duration(h.settings.TimeBuffer)*time.Second
	if extended {
		h.state.EndTime = now.Add(time.Duration(h.settings.TimeBuffer) * time.Second)
	}
	endTime := h.state.EndTime
	h.mu.Unlock()

	receipt := &domain.BidReceipt{
		ID:       utils.GenerateID("bid"),
		ItemID:   itemID,
		Bidder:   bidder,
		Amount:   amount,
		Extended: extended,
		PlacedAt: now,
	}

	h.log.Info("Bid accepted",
		"item_id", itemID, "bidder", bidder, "amount", amount,
		"extended", extended, "end_time", endTime)

	h.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventBidPlaced,
		ItemID:    itemID,
		Bidder:    bidder,
		Amount:    amount,
		Extended:  extended,
		EndTime:   endTime,
		ReceiptID: receipt.ID,
		Timestamp: now,
	})
	return receipt, nil
}

// minAcceptableBid computes prevBid raised by increment percent in uint64
// arithmetic. When the true minimum does not fit in uint64 no bid can meet
// it, so the caller rejects before any funds move.
func minAcceptableBid(prevBid uint64, increment uint8) (uint64, error) {
	incr := uint64(increment)
	if incr != 0 && prevBid > math.MaxUint64/incr {
		return 0, fmt.Errorf("%w: minimum acceptable bid over %d exceeds the uint64 range", domain.ErrIncrementNotMet, prevBid)
	}
	raise := prevBid * incr / 100
	if raise > math.MaxUint64-prevBid {
		return 0, fmt.Errorf("%w: minimum acceptable bid over %d exceeds the uint64 range", domain.ErrIncrementNotMet, prevBid)
	}
	return prevBid + raise, nil
}
