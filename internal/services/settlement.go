package services

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/domain"
)

// Advance settles the finished round and opens the next one in a single
// guarded step. Callable by anyone while the house is running; the clock
// checks inside settle are the real gate.
func (h *AuctionHouse) Advance(ctx context.Context) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return err
	}
	if err := h.pauser.RequireUnpaused(); err != nil {
		return err
	}

	if err := h.settle(ctx); err != nil {
		return err
	}
	h.open(ctx)
	return nil
}

// Settle closes the finished round without opening another. Only makes sense
// while paused, where it lets an operator drain the last round.
func (h *AuctionHouse) Settle(ctx context.Context) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return err
	}
	if err := h.pauser.RequirePaused(); err != nil {
		return err
	}
	return h.settle(ctx)
}

// settle pays out and disperses the item for a round whose window has
// elapsed. Caller holds the guard. Money and the item move before the settled
// flag flips; both collaborators either succeed or abort the call with state
// untouched.
func (h *AuctionHouse) settle(ctx context.Context) error {
	if h.state.Settled {
		return domain.ErrAlreadySettled
	}
	if !h.state.Started() {
		return domain.ErrRoundNeverStarted
	}
	now := h.now()
	if !h.state.Over(now) {
		return domain.ErrRoundStillActive
	}

	winner := h.state.HighestBidder
	amount := h.state.HighestBid
	itemID := h.state.ItemID

	if !winner.IsZero() {
		// The house must still hold the item before the treasury is paid;
		// once money moves the item transfer may no longer fail.
		owner, err := h.registry.OwnerOf(ctx, itemID)
		if err != nil {
			return err
		}
		if owner != h.account {
			return fmt.Errorf("item %d held by %s, not by the house", itemID, owner)
		}
		if amount > 0 {
			if err := h.dispatcher.PayOut(ctx, h.settings.Treasury, amount); err != nil {
				return err
			}
		}
		if err := h.registry.Transfer(ctx, h.account, winner, itemID); err != nil {
			return err
		}
	} else {
		// Nobody wanted it; it does not get a second chance.
		if err := h.registry.Burn(ctx, itemID); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.state.Settled = true
	h.mu.Unlock()

	h.log.Info("Round settled", "item_id", itemID, "winner", winner, "amount", amount)
	h.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventRoundSettled,
		ItemID:    itemID,
		Winner:    winner,
		Amount:    amount,
		Timestamp: now,
	})
	return nil
}

// open mints the next item and resets the round window. Caller holds the
// guard. A mint failure is the one fault that must not escape: it parks the
// house in the paused state with the previous, settled round intact, and an
// operator takes it from there.
func (h *AuctionHouse) open(ctx context.Context) {
	itemID, err := h.registry.Mint(ctx, h.account)
	if err != nil {
		h.log.Error("Mint failed, pausing auction house", "error", err)
		if pErr := h.pauser.Pause(); pErr == nil {
			h.publish(ctx, &domain.AuctionEvent{Type: domain.EventPaused, Timestamp: h.now()})
		}
		return
	}

	now := h.now()
	endTime := now.Add(time.Duration(h.settings.Duration) * time.Second)

	h.mu.Lock()
	h.state = domain.AuctionState{
		ItemID:    itemID,
		StartTime: now,
		EndTime:   endTime,
	}
	h.mu.Unlock()

	h.log.Info("Round created", "item_id", itemID, "start_time", now, "end_time", endTime)
	h.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventRoundCreated,
		ItemID:    itemID,
		StartTime: now,
		EndTime:   endTime,
		Timestamp: now,
	})
}
