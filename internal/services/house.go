package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/guard"
	"auction-house/pkg/logger"
)

// AuctionHouse runs the perpetual single-item auction: it validates and
// records bids, settles finished rounds and opens new ones. Every mutating
// entry point holds the reentrancy guard for its whole duration, so a payout
// recipient calling back in is rejected and no two operations interleave.
type AuctionHouse struct {
	version string

	// Fixed at construction.
	account    domain.Address
	ledger     domain.NativeLedger
	wrapped    domain.WrappedAsset
	authority  domain.UpgradeAuthority
	dispatcher *PaymentDispatcher
	events     domain.EventPublisher
	log        logger.Logger

	// Established by the one-time Initialize call.
	registry    domain.TokenRegistry
	roles       domain.RoleStore
	initialized bool

	guard  guard.Reentrancy
	pauser *guard.Pauser

	mu       sync.RWMutex // snapshot consistency for readers
	settings domain.AuctionSettings
	state    domain.AuctionState

	now func() time.Time
}

// Version the house reports until an upgrade is applied.
const initialVersion = "1.0.0"

func NewAuctionHouse(
	account domain.Address,
	ledger domain.NativeLedger,
	wrapped domain.WrappedAsset,
	authority domain.UpgradeAuthority,
	payoutBudget time.Duration,
	events domain.EventPublisher,
	log logger.Logger,
) *AuctionHouse {
	return &AuctionHouse{
		version:    initialVersion,
		account:    account,
		ledger:     ledger,
		wrapped:    wrapped,
		authority:  authority,
		dispatcher: NewPaymentDispatcher(ledger, wrapped, account, payoutBudget, log),
		events:     events,
		log:        log,
		pauser:     guard.NewPausedPauser(),
		now:        time.Now,
	}
}

// Initialize establishes the item registry, the role store and the initial
// settings. Only the upgrade authority's identity may call it, exactly once.
// The house stays paused until an operator unpauses it.
func (h *AuctionHouse) Initialize(
	caller domain.Address,
	registry domain.TokenRegistry,
	roles domain.RoleStore,
	settings domain.AuctionSettings,
) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if h.initialized {
		return domain.ErrAlreadyInitialized
	}
	if caller != h.authority.Identity() {
		return fmt.Errorf("%w: only the upgrade authority may initialize", domain.ErrUnauthorized)
	}
	if settings.Duration > math.MaxUint32 || settings.TimeBuffer > math.MaxUint32 {
		return fmt.Errorf("%w: time window field", domain.ErrValueTooLarge)
	}

	h.registry = registry
	h.roles = roles
	h.mu.Lock()
	h.settings = settings
	h.mu.Unlock()
	h.initialized = true

	h.log.Info("Auction house initialized",
		"owner", roles.Owner(), "treasury", settings.Treasury, "duration", settings.Duration)
	return nil
}

// ApplyUpgrade moves the house to a new implementation version after the
// upgrade authority has vetted the path.
func (h *AuctionHouse) ApplyUpgrade(caller domain.Address, next string) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return err
	}
	if err := h.roles.Require(caller); err != nil {
		return err
	}
	if !h.authority.IsAuthorizedUpgrade(h.version, next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidUpgrade, h.version, next)
	}

	h.log.Info("Upgrade applied", "from", h.version, "to", next)
	h.mu.Lock()
	h.version = next
	h.mu.Unlock()
	return nil
}

// Pause halts round turnover. Owner-gated.
func (h *AuctionHouse) Pause(ctx context.Context, caller domain.Address) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return err
	}
	if err := h.roles.Require(caller); err != nil {
		return err
	}
	if err := h.pauser.Pause(); err != nil {
		return err
	}

	h.publish(ctx, &domain.AuctionEvent{Type: domain.EventPaused, Timestamp: h.now()})
	return nil
}

// Unpause resumes the house. The first-ever unpause hands ownership to the
// treasury and opens round one; an unpause over a settled round opens the
// next one; an unpause mid-round simply resumes bidding.
func (h *AuctionHouse) Unpause(ctx context.Context, caller domain.Address) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return err
	}
	if err := h.roles.Require(caller); err != nil {
		return err
	}
	if err := h.pauser.Unpause(); err != nil {
		return err
	}
	h.publish(ctx, &domain.AuctionEvent{Type: domain.EventUnpaused, Timestamp: h.now()})

	if !h.state.Started() {
		// Bootstrap: the deployer's job is done once the first round opens.
		if err := h.roles.TransferOwnership(caller, h.settings.Treasury); err != nil {
			return err
		}
		h.log.Info("Ownership handed to treasury", "treasury", h.settings.Treasury)
		h.open(ctx)
		return nil
	}
	if h.state.Settled {
		h.open(ctx)
	}
	return nil
}

func (h *AuctionHouse) requireInitialized() error {
	if !h.initialized {
		return domain.ErrNotInitialized
	}
	return nil
}

// publish never fails the surrounding operation; observers are best-effort.
func (h *AuctionHouse) publish(ctx context.Context, event *domain.AuctionEvent) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, event); err != nil {
		h.log.Error("Failed to publish event", "type", event.Type, "error", err)
	}
}

// Auction returns a copy of the live round.
func (h *AuctionHouse) Auction() domain.AuctionState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Settings returns a copy of the current configuration.
func (h *AuctionHouse) Settings() domain.AuctionSettings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

func (h *AuctionHouse) Paused() bool { return h.pauser.Paused() }

func (h *AuctionHouse) Version() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Setter surface. All owner-gated; duration and buffer must fit the 32-bit
// window width the round math and the history schema assume.

func (h *AuctionHouse) SetDuration(ctx context.Context, caller domain.Address, seconds uint64) error {
	return h.updateSetting(ctx, caller, "duration", seconds, func(s *domain.AuctionSettings) error {
		if seconds > math.MaxUint32 {
			return fmt.Errorf("%w: duration %d", domain.ErrValueTooLarge, seconds)
		}
		s.Duration = seconds
		return nil
	})
}

func (h *AuctionHouse) SetTimeBuffer(ctx context.Context, caller domain.Address, seconds uint64) error {
	return h.updateSetting(ctx, caller, "time_buffer", seconds, func(s *domain.AuctionSettings) error {
		if seconds > math.MaxUint32 {
			return fmt.Errorf("%w: time buffer %d", domain.ErrValueTooLarge, seconds)
		}
		s.TimeBuffer = seconds
		return nil
	})
}

func (h *AuctionHouse) SetReservePrice(ctx context.Context, caller domain.Address, amount uint64) error {
	return h.updateSetting(ctx, caller, "reserve_price", amount, func(s *domain.AuctionSettings) error {
		s.ReservePrice = amount
		return nil
	})
}

func (h *AuctionHouse) SetMinBidIncrement(ctx context.Context, caller domain.Address, percent uint64) error {
	return h.updateSetting(ctx, caller, "min_bid_increment", percent, func(s *domain.AuctionSettings) error {
		if percent > math.MaxUint8 {
			return fmt.Errorf("%w: increment %d%%", domain.ErrValueTooLarge, percent)
		}
		s.MinBidIncrement = uint8(percent)
		return nil
	})
}

func (h *AuctionHouse) SetTreasury(ctx context.Context, caller, treasury domain.Address) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return err
	}
	if err := h.roles.Require(caller); err != nil {
		return err
	}

	h.mu.Lock()
	h.settings.Treasury = treasury
	h.mu.Unlock()

	h.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventSettingsChanged,
		Field:     "treasury",
		Value:     string(treasury),
		Timestamp: h.now(),
	})
	return nil
}

func (h *AuctionHouse) updateSetting(
	ctx context.Context,
	caller domain.Address,
	field string,
	value uint64,
	apply func(*domain.AuctionSettings) error,
) error {
	if err := h.guard.Enter(); err != nil {
		return err
	}
	defer h.guard.Exit()

	if err := h.requireInitialized(); err != nil {
		return err
	}
	if err := h.roles.Require(caller); err != nil {
		return err
	}

	h.mu.Lock()
	err := apply(&h.settings)
	h.mu.Unlock()
	if err != nil {
		return err
	}

	h.publish(ctx, &domain.AuctionEvent{
		Type:      domain.EventSettingsChanged,
		Field:     field,
		Value:     strconv.FormatUint(value, 10),
		Timestamp: h.now(),
	})
	return nil
}
