package services

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"auction-house/pkg/logger"
)

// Crier is the optional operator automation: a cron loop that calls Advance
// once the round window has elapsed. The house itself has no scheduler; the
// crier is just a diligent external caller and can be disabled without losing
// anything except promptness.
type Crier struct {
	cron  *cron.Cron
	house *AuctionHouse
	spec  string
	log   logger.Logger
}

// NewCrier builds a crier that checks the round every interval.
func NewCrier(house *AuctionHouse, interval time.Duration, log logger.Logger) *Crier {
	return &Crier{
		cron:  cron.New(cron.WithSeconds()),
		house: house,
		spec:  "@every " + interval.String(),
		log:   log,
	}
}

func (c *Crier) Start(ctx context.Context) error {
	c.log.Info("Starting auction crier", "schedule", c.spec)

	_, err := c.cron.AddFunc(c.spec, func() {
		c.tick(ctx)
	})
	if err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

func (c *Crier) Stop() error {
	c.log.Info("Stopping auction crier")
	c.cron.Stop()
	return nil
}

func (c *Crier) tick(ctx context.Context) {
	if c.house.Paused() {
		return
	}
	state := c.house.Auction()
	if !state.Started() || state.Settled || !state.Over(time.Now()) {
		return
	}

	if err := c.house.Advance(ctx); err != nil {
		// Another caller may have advanced between the check and the call.
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Warn("Crier advance failed", "item_id", state.ItemID, "error", err)
		return
	}
	c.log.Info("Crier advanced round", "settled_item_id", state.ItemID)
}
