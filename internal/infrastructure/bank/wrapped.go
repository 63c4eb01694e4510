package bank

import (
	"context"
	"fmt"
	"math"
	"sync"

	"auction-house/internal/domain"
)

// WrappedCoin wraps native coin into a fungible balance held in the wrapper's
// custody account. Wrapped transfers never run receive hooks, so delivery
// cannot be blocked by a hostile recipient.
type WrappedCoin struct {
	mu       sync.Mutex
	ledger   *Ledger
	custody  domain.Address
	balances map[domain.Address]uint64
}

func NewWrappedCoin(ledger *Ledger, custody domain.Address) *WrappedCoin {
	return &WrappedCoin{
		ledger:   ledger,
		custody:  custody,
		balances: make(map[domain.Address]uint64),
	}
}

// DepositNative pulls amount of native coin from the depositor into custody
// and credits the depositor's wrapped balance.
func (w *WrappedCoin) DepositNative(ctx context.Context, from domain.Address, amount uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if amount > math.MaxUint64-w.balances[from] {
		return fmt.Errorf("wrap deposit: %w: crediting %d to %s would overflow its balance",
			domain.ErrValueTooLarge, amount, from)
	}
	if err := w.ledger.Move(ctx, from, w.custody, amount); err != nil {
		return fmt.Errorf("wrap deposit: %w", err)
	}
	w.balances[from] += amount
	return nil
}

func (w *WrappedCoin) Transfer(_ context.Context, from, to domain.Address, amount uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[from] < amount {
		return fmt.Errorf("wrapped transfer: %w: %s has %d, needs %d",
			domain.ErrInsufficientFunds, from, w.balances[from], amount)
	}
	if from != to && amount > math.MaxUint64-w.balances[to] {
		return fmt.Errorf("wrapped transfer: %w: crediting %d to %s would overflow its balance",
			domain.ErrValueTooLarge, amount, to)
	}
	w.balances[from] -= amount
	w.balances[to] += amount
	return nil
}

func (w *WrappedCoin) BalanceOf(_ context.Context, account domain.Address) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[account]
}
