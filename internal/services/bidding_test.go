package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/domain"
	"auction-house/pkg/guard"
)

func TestPlaceBidValidation(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	ctx := context.Background()
	itemID := f.house.Auction().ItemID

	t.Run("wrong round", func(t *testing.T) {
		_, err := f.house.PlaceBid(ctx, alice, itemID+1, 100)
		assert.ErrorIs(t, err, domain.ErrWrongRound)
	})

	t.Run("below reserve on unbid round", func(t *testing.T) {
		_, err := f.house.PlaceBid(ctx, alice, itemID, 99)
		assert.ErrorIs(t, err, domain.ErrReserveNotMet)
	})

	t.Run("first bid at reserve accepted", func(t *testing.T) {
		receipt, err := f.house.PlaceBid(ctx, alice, itemID, 100)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), receipt.Amount)
		assert.Equal(t, uint64(100), f.ledger.Balance(ctx, escrowAccount))
	})

	t.Run("below increment on bid round", func(t *testing.T) {
		// 10% of 100 -> minimum acceptable 110
		_, err := f.house.PlaceBid(ctx, bob, itemID, 105)
		assert.ErrorIs(t, err, domain.ErrIncrementNotMet)
	})

	t.Run("bidder without funds", func(t *testing.T) {
		_, err := f.house.PlaceBid(ctx, domain.Address("pauper"), itemID, 200)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})

	t.Run("after window closes", func(t *testing.T) {
		f.clock.Advance(601 * time.Second)
		_, err := f.house.PlaceBid(ctx, bob, itemID, 200)
		assert.ErrorIs(t, err, domain.ErrRoundOver)
	})
}

func TestHighestBidIsMonotonicAndRefundsAreExact(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	ctx := context.Background()
	itemID := f.house.Auction().ItemID

	aliceBefore := f.ledger.Balance(ctx, alice)

	_, err := f.house.PlaceBid(ctx, alice, itemID, 100)
	require.NoError(t, err)

	prev := uint64(100)
	for _, bid := range []struct {
		bidder domain.Address
		amount uint64
	}{{bob, 110}, {alice, 121}, {carol, 500}} {
		_, err := f.house.PlaceBid(ctx, bid.bidder, itemID, bid.amount)
		require.NoError(t, err)

		state := f.house.Auction()
		assert.GreaterOrEqual(t, state.HighestBid, prev)
		assert.Equal(t, bid.amount, state.HighestBid)
		assert.Equal(t, bid.bidder, state.HighestBidder)
		prev = bid.amount
	}

	// Alice was displaced twice; every displaced amount came straight back,
	// so she ends where she started.
	assert.Equal(t, aliceBefore, f.ledger.Balance(ctx, alice))
	// Custody holds exactly the winning bid.
	assert.Equal(t, uint64(500), f.ledger.Balance(ctx, escrowAccount))
}

func TestOverflowingBidIsRejectedWithNoFundsMoved(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	ctx := context.Background()
	itemID := f.house.Auction().ItemID

	// A highest bid this large pushes the 10% minimum past MaxUint64, so no
	// later bid can ever satisfy the increment.
	whale := domain.Address("whale")
	whaleBid := uint64(18_400_000_000_000_000_000)
	require.NoError(t, f.ledger.Credit(whale, whaleBid))
	_, err := f.house.PlaceBid(ctx, whale, itemID, whaleBid)
	require.NoError(t, err)

	bobBefore := f.ledger.Balance(ctx, bob)
	_, err = f.house.PlaceBid(ctx, bob, itemID, bobBefore)
	assert.ErrorIs(t, err, domain.ErrIncrementNotMet)

	// The rejection happened before custody was touched: the escrow still
	// holds exactly the whale's bid and bob keeps everything.
	assert.Equal(t, whaleBid, f.ledger.Balance(ctx, escrowAccount))
	assert.Equal(t, bobBefore, f.ledger.Balance(ctx, bob))
	state := f.house.Auction()
	assert.Equal(t, whale, state.HighestBidder)
	assert.Equal(t, whaleBid, state.HighestBid)
}

func TestMinAcceptableBid(t *testing.T) {
	min, err := minAcceptableBid(100, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(110), min)

	min, err = minAcceptableBid(100, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), min)

	// Multiplication wraps.
	_, err = minAcceptableBid(math.MaxUint64/10+1, 10)
	assert.ErrorIs(t, err, domain.ErrIncrementNotMet)

	// Multiplication fits but the final sum does not.
	_, err = minAcceptableBid(math.MaxUint64-100, 1)
	assert.ErrorIs(t, err, domain.ErrIncrementNotMet)
}

func TestAntiSnipeExtension(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	ctx := context.Background()
	itemID := f.house.Auction().ItemID
	openedAt := f.clock.Now()

	_, err := f.house.PlaceBid(ctx, alice, itemID, 100)
	require.NoError(t, err)
	assert.Equal(t, openedAt.Add(600*time.Second), f.house.Auction().EndTime,
		"bid outside the buffer must not move the end time")

	// 250 seconds remain, buffer is 300: extension fires.
	f.clock.Advance(350 * time.Second)
	receipt, err := f.house.PlaceBid(ctx, bob, itemID, 150)
	require.NoError(t, err)
	assert.True(t, receipt.Extended)
	assert.Equal(t, f.clock.Now().Add(300*time.Second), f.house.Auction().EndTime)
}

func TestRefundToHostileBidderFallsBackToWrappedRail(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	ctx := context.Background()
	itemID := f.house.Auction().ItemID

	hostile := domain.Address("hostile")
	f.ledger.Credit(hostile, 1000)
	f.ledger.SetReceiveHook(hostile, func(context.Context, domain.Address, uint64) error {
		return errors.New("no thanks")
	})

	_, err := f.house.PlaceBid(ctx, hostile, itemID, 100)
	require.NoError(t, err)

	_, err = f.house.PlaceBid(ctx, bob, itemID, 110)
	require.NoError(t, err)

	// The hostile bidder rejected native delivery but still got paid, wrapped.
	assert.Equal(t, uint64(900), f.ledger.Balance(ctx, hostile))
	assert.Equal(t, uint64(100), f.wrapped.BalanceOf(ctx, hostile))
	assert.Equal(t, bob, f.house.Auction().HighestBidder)
}

func TestReentrantBidFromRefundHookIsRejected(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	ctx := context.Background()
	itemID := f.house.Auction().ItemID

	var reentrantErr error
	attacker := domain.Address("attacker")
	f.ledger.Credit(attacker, 10_000)
	f.ledger.SetReceiveHook(attacker, func(hookCtx context.Context, _ domain.Address, _ uint64) error {
		_, reentrantErr = f.house.PlaceBid(hookCtx, attacker, itemID, 5000)
		return nil
	})

	_, err := f.house.PlaceBid(ctx, attacker, itemID, 100)
	require.NoError(t, err)

	_, err = f.house.PlaceBid(ctx, bob, itemID, 110)
	require.NoError(t, err)

	assert.ErrorIs(t, reentrantErr, guard.ErrReentrantCall)
	assert.Equal(t, bob, f.house.Auction().HighestBidder, "reentrant bid must not land")
}

type brokenWrapped struct{}

func (brokenWrapped) DepositNative(context.Context, domain.Address, uint64) error {
	return errors.New("wrapper offline")
}

func (brokenWrapped) Transfer(context.Context, domain.Address, domain.Address, uint64) error {
	return errors.New("wrapper offline")
}

func (brokenWrapped) BalanceOf(context.Context, domain.Address) uint64 { return 0 }

func TestFailedRefundRollsBackTheWholeBid(t *testing.T) {
	f := newFixture(t, 0)
	// Swap in a dead fallback rail so a hostile refund fails completely.
	f.house.wrapped = brokenWrapped{}
	f.house.dispatcher.wrapped = brokenWrapped{}
	f.start(t)
	ctx := context.Background()
	itemID := f.house.Auction().ItemID

	hostile := domain.Address("hostile")
	f.ledger.Credit(hostile, 1000)
	f.ledger.SetReceiveHook(hostile, func(context.Context, domain.Address, uint64) error {
		return errors.New("no thanks")
	})

	_, err := f.house.PlaceBid(ctx, hostile, itemID, 100)
	require.NoError(t, err)

	bobBefore := f.ledger.Balance(ctx, bob)
	_, err = f.house.PlaceBid(ctx, bob, itemID, 110)
	require.Error(t, err)

	// Bob's escrow pull was unwound; the hostile bid still stands.
	assert.Equal(t, bobBefore, f.ledger.Balance(ctx, bob))
	state := f.house.Auction()
	assert.Equal(t, hostile, state.HighestBidder)
	assert.Equal(t, uint64(100), state.HighestBid)
	assert.Equal(t, uint64(100), f.ledger.Balance(ctx, escrowAccount))
}
