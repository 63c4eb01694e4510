package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

var (
	ErrSupplyExhausted = errors.New("token supply exhausted")
	ErrUnknownToken    = errors.New("unknown token")
)

// TokenRegistry is an in-memory unique-item registry. IDs are sequential
// starting at 1; zero stays reserved for "never minted". A MaxSupply of zero
// means unbounded.
type TokenRegistry struct {
	mu        sync.Mutex
	owners    map[uint64]domain.Address
	nextID    uint64
	maxSupply uint64
	log       logger.Logger
}

func NewTokenRegistry(maxSupply uint64, log logger.Logger) *TokenRegistry {
	return &TokenRegistry{
		owners:    make(map[uint64]domain.Address),
		nextID:    1,
		maxSupply: maxSupply,
		log:       log,
	}
}

func (r *TokenRegistry) Mint(_ context.Context, to domain.Address) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSupply != 0 && r.nextID > r.maxSupply {
		return 0, ErrSupplyExhausted
	}

	id := r.nextID
	r.nextID++
	r.owners[id] = to

	r.log.Debug("Token minted", "item_id", id, "owner", to)
	return id, nil
}

func (r *TokenRegistry) Burn(_ context.Context, itemID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owners[itemID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, itemID)
	}
	delete(r.owners, itemID)

	r.log.Debug("Token burned", "item_id", itemID)
	return nil
}

func (r *TokenRegistry) Transfer(_ context.Context, from, to domain.Address, itemID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[itemID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, itemID)
	}
	if owner != from {
		return fmt.Errorf("token %d not owned by %s", itemID, from)
	}
	r.owners[itemID] = to
	return nil
}

func (r *TokenRegistry) OwnerOf(_ context.Context, itemID uint64) (domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[itemID]
	if !ok {
		return domain.ZeroAddress, fmt.Errorf("%w: %d", ErrUnknownToken, itemID)
	}
	return owner, nil
}
