package domain

import "errors"

// Bid validation errors. Safe to retry with corrected input.
var (
	ErrWrongRound      = errors.New("bid is not for the current item")
	ErrRoundOver       = errors.New("bidding window has closed")
	ErrReserveNotMet   = errors.New("bid below reserve price")
	ErrIncrementNotMet = errors.New("bid below minimum increment")
)

// Sequencing errors: the caller invoked an operation out of order.
var (
	ErrAlreadySettled    = errors.New("round already settled")
	ErrRoundNeverStarted = errors.New("no round has started")
	ErrRoundStillActive  = errors.New("round has not ended")
)

// Hard failures.
var (
	// ErrInsolvent means the ledger holds less than an amount the state
	// machine believes it holds. Bookkeeping bug; never expected.
	ErrInsolvent = errors.New("escrow balance below owed amount")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnauthorized      = errors.New("caller not authorized")
	ErrInvalidUpgrade    = errors.New("upgrade target not authorized")
	ErrValueTooLarge     = errors.New("value exceeds storage width")

	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
)
