package access

import (
	"fmt"
	"sync"

	"auction-house/internal/domain"
)

// Ownable is a single-owner role store.
type Ownable struct {
	mu    sync.RWMutex
	owner domain.Address
}

func NewOwnable(owner domain.Address) *Ownable {
	return &Ownable{owner: owner}
}

func (o *Ownable) Owner() domain.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

func (o *Ownable) Require(caller domain.Address) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if caller != o.owner {
		return fmt.Errorf("%w: %s is not owner", domain.ErrUnauthorized, caller)
	}
	return nil
}

func (o *Ownable) TransferOwnership(caller, newOwner domain.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.owner {
		return fmt.Errorf("%w: %s is not owner", domain.ErrUnauthorized, caller)
	}
	o.owner = newOwner
	return nil
}

// UpgradeManager is a registry of vetted upgrade paths. The identity is the
// account allowed to run one-time setup on components it manages.
type UpgradeManager struct {
	mu       sync.RWMutex
	identity domain.Address
	approved map[string]map[string]bool // current -> next -> ok
}

func NewUpgradeManager(identity domain.Address) *UpgradeManager {
	return &UpgradeManager{
		identity: identity,
		approved: make(map[string]map[string]bool),
	}
}

func (m *UpgradeManager) Identity() domain.Address { return m.identity }

// RegisterUpgrade vets next as a valid upgrade from current.
func (m *UpgradeManager) RegisterUpgrade(current, next string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.approved[current] == nil {
		m.approved[current] = make(map[string]bool)
	}
	m.approved[current][next] = true
}

func (m *UpgradeManager) IsAuthorizedUpgrade(current, next string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.approved[current][next]
}
