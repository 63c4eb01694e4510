package domain

import (
	"context"
	"time"
)

// TokenRegistry is the unique-item registry. Minted IDs are strictly
// positive; zero is reserved for "never minted".
type TokenRegistry interface {
	Mint(ctx context.Context, to Address) (uint64, error)
	Burn(ctx context.Context, itemID uint64) error
	Transfer(ctx context.Context, from, to Address, itemID uint64) error
	OwnerOf(ctx context.Context, itemID uint64) (Address, error)
}

// NativeLedger holds native-coin balances.
type NativeLedger interface {
	Balance(ctx context.Context, account Address) uint64

	// Move debits from and credits to without notifying anyone. Used for
	// escrow pulls and other internal bookkeeping.
	Move(ctx context.Context, from, to Address, amount uint64) error

	// Send is like Move but additionally runs the recipient's receive hook,
	// bounded by budget. A hook that errors, blocks past the budget, or
	// panics fails the whole transfer and leaves balances untouched.
	Send(ctx context.Context, from, to Address, amount uint64, budget time.Duration) error
}

// WrappedAsset is the fungible wrapper over the native coin. Its transfers are
// plain bookkeeping with no recipient callout, which makes it the
// guaranteed-deliverable fallback rail.
type WrappedAsset interface {
	DepositNative(ctx context.Context, from Address, amount uint64) error
	Transfer(ctx context.Context, from, to Address, amount uint64) error
	BalanceOf(ctx context.Context, account Address) uint64
}

// RoleStore supplies the owner identity gating settings setters, pause state
// changes and ownership handover.
type RoleStore interface {
	Owner() Address
	Require(caller Address) error
	TransferOwnership(caller, newOwner Address) error
}

// UpgradeAuthority vets runtime upgrades and is the only identity allowed to
// run one-time setup.
type UpgradeAuthority interface {
	Identity() Address
	IsAuthorizedUpgrade(current, next string) bool
}

// EventPublisher receives every externally observable state change.
type EventPublisher interface {
	Publish(ctx context.Context, event *AuctionEvent) error
}

// HistoryStore serves persisted round and bid history.
type HistoryStore interface {
	RecentBids(ctx context.Context, limit int) ([]*BidReceipt, error)
	Rounds(ctx context.Context, limit int) ([]*RoundRecord, error)
}
