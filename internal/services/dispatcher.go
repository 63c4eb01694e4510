package services

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// PaymentDispatcher moves value out of a custody account without ever letting
// a hostile recipient strand it. The native attempt runs under a fixed compute
// budget; when it fails the amount is wrapped and delivered over the wrapped
// rail, which has no recipient callout to sabotage. Failures on the fallback
// rail are loud: the caller aborts.
type PaymentDispatcher struct {
	ledger  domain.NativeLedger
	wrapped domain.WrappedAsset
	account domain.Address
	budget  time.Duration
	log     logger.Logger
}

func NewPaymentDispatcher(
	ledger domain.NativeLedger,
	wrapped domain.WrappedAsset,
	account domain.Address,
	budget time.Duration,
	log logger.Logger,
) *PaymentDispatcher {
	return &PaymentDispatcher{
		ledger:  ledger,
		wrapped: wrapped,
		account: account,
		budget:  budget,
		log:     log,
	}
}

// PayOut delivers exactly amount to recipient, once, over whichever rail
// works. An account balance below amount is a bookkeeping violation and
// surfaces as ErrInsolvent before anything moves.
func (d *PaymentDispatcher) PayOut(ctx context.Context, recipient domain.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}

	if bal := d.ledger.Balance(ctx, d.account); bal < amount {
		return fmt.Errorf("%w: custody holds %d, owes %d", domain.ErrInsolvent, bal, amount)
	}

	err := d.ledger.Send(ctx, d.account, recipient, amount, d.budget)
	if err == nil {
		return nil
	}
	d.log.Warn("Native payout failed, falling back to wrapped rail",
		"recipient", recipient, "amount", amount, "error", err)

	if err := d.wrapped.DepositNative(ctx, d.account, amount); err != nil {
		return fmt.Errorf("payout fallback wrap for %s: %w", recipient, err)
	}
	if err := d.wrapped.Transfer(ctx, d.account, recipient, amount); err != nil {
		return fmt.Errorf("payout fallback transfer to %s: %w", recipient, err)
	}

	d.log.Info("Payout delivered as wrapped asset", "recipient", recipient, "amount", amount)
	return nil
}
