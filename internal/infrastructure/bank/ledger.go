package bank

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// ReceiveHook is code a recipient registers to run when native coin is sent to
// it. Hooks are untrusted: they may error, block, panic, or try to reenter the
// caller.
type ReceiveHook func(ctx context.Context, from domain.Address, amount uint64) error

// Ledger is an in-memory native-coin ledger. Balances only change under the
// ledger mutex; a Send's receive hook runs outside that mutex so a hooked
// recipient can observe (and attack) the caller but can never corrupt
// balances.
type Ledger struct {
	mu       sync.Mutex
	balances map[domain.Address]uint64
	hooks    map[domain.Address]ReceiveHook
	log      logger.Logger
}

func NewLedger(log logger.Logger) *Ledger {
	return &Ledger{
		balances: make(map[domain.Address]uint64),
		hooks:    make(map[domain.Address]ReceiveHook),
		log:      log,
	}
}

// Credit creates funds out of thin air. Faucet for wiring, ops and tests.
func (l *Ledger) Credit(account domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > math.MaxUint64-l.balances[account] {
		return fmt.Errorf("%w: crediting %d to %s would overflow its balance", domain.ErrValueTooLarge, amount, account)
	}
	l.balances[account] += amount
	return nil
}

// SetReceiveHook installs (or clears, with nil) a recipient's receive hook.
func (l *Ledger) SetReceiveHook(account domain.Address, hook ReceiveHook) {
	l.mu.Lock()
	if hook == nil {
		delete(l.hooks, account)
	} else {
		l.hooks[account] = hook
	}
	l.mu.Unlock()
}

func (l *Ledger) Balance(_ context.Context, account domain.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

func (l *Ledger) Move(_ context.Context, from, to domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

func (l *Ledger) move(from, to domain.Address, amount uint64) error {
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", domain.ErrInsufficientFunds, from, l.balances[from], amount)
	}
	// A credit that would wrap the recipient's balance aborts the whole
	// move; a transfer never changes the total coin in the ledger.
	if from != to && amount > math.MaxUint64-l.balances[to] {
		return fmt.Errorf("%w: crediting %d to %s would overflow its balance", domain.ErrValueTooLarge, amount, to)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Send runs the recipient's receive hook bounded by budget, then commits the
// balance change. The hook decides acceptance; funds move only if it returns
// in time without error. No hook means unconditional acceptance.
func (l *Ledger) Send(ctx context.Context, from, to domain.Address, amount uint64, budget time.Duration) error {
	l.mu.Lock()
	if l.balances[from] < amount {
		bal := l.balances[from]
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %d, needs %d", domain.ErrInsufficientFunds, from, bal, amount)
	}
	hook := l.hooks[to]
	l.mu.Unlock()

	if hook != nil {
		if err := l.runHook(ctx, hook, from, to, amount, budget); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

func (l *Ledger) runHook(ctx context.Context, hook ReceiveHook, from, to domain.Address, amount uint64, budget time.Duration) error {
	hookCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("receive hook panicked: %v", r)
			}
		}()
		done <- hook(hookCtx, from, amount)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("receive hook for %s rejected transfer: %w", to, err)
		}
		return nil
	case <-hookCtx.Done():
		// The hook goroutine is abandoned; it holds no ledger locks.
		l.log.Warn("receive hook exceeded budget", "recipient", to, "budget", budget)
		return fmt.Errorf("receive hook for %s exceeded budget: %w", to, hookCtx.Err())
	}
}
