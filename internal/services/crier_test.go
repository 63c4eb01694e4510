package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/pkg/logger"
)

func TestCrierTickAdvancesOnlyElapsedRounds(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	crier := NewCrier(f.house, time.Second, logger.NewNop())
	ctx := context.Background()

	// Round still active: nothing happens.
	crier.tick(ctx)
	assert.Equal(t, uint64(1), f.house.Auction().ItemID)

	// fakeClock drives the house; the crier's own clock check uses wall time,
	// which is far past the fake round end.
	f.clock.Advance(601 * time.Second)
	crier.tick(ctx)
	assert.Equal(t, uint64(2), f.house.Auction().ItemID)
}

func TestCrierTickStaysQuietWhilePaused(t *testing.T) {
	f := newFixture(t, 0)
	f.start(t)
	crier := NewCrier(f.house, time.Second, logger.NewNop())
	ctx := context.Background()

	f.clock.Advance(601 * time.Second)
	require.NoError(t, f.house.Pause(ctx, treasury))

	crier.tick(ctx)
	assert.False(t, f.house.Auction().Settled, "a paused house is the operator's business")
}
