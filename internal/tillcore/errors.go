package tillcore

import "errors"

// Precondition errors are surfaced to the operator verbatim and are never
// retried automatically.
var (
	ErrRegisterAlreadyOpen = errors.New("a cash register is already open for this restaurant")
	ErrRegisterNotOpen     = errors.New("cash register is not open")
	ErrRegisterClosed      = errors.New("cash register is closed")
	ErrNoOpenRegister      = errors.New("no open cash register: open the till before accepting payment")
	ErrIncompletePayment   = errors.New("allocations do not cover the payable total")
	ErrExceedsRemaining    = errors.New("allocation exceeds the remaining payable amount")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidType         = errors.New("unknown transaction type")
	ErrOrderNotPayable     = errors.New("order is not payable in its current state")

	// ErrLedgerDrift means the summed expected balance disagrees with the
	// latest stored balance snapshot. It indicates data corruption and
	// requires manual reconciliation.
	ErrLedgerDrift = errors.New("ledger drift: summed balance disagrees with latest snapshot")
)
