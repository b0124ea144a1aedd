package status

import (
	"errors"
	"fmt"
)

var (
	ErrWalletNotConnected    = errors.New("purchase: wallet not connected")
	ErrInvalidQuantity       = errors.New("purchase: quantity must be at least 1")
	ErrInsufficientInventory = errors.New("purchase: quantity exceeds remaining tickets")
	ErrNotTicketOwner        = errors.New("transfer: connected wallet does not own this ticket")
	ErrUserRejected          = errors.New("chain: signature request rejected by user")
	ErrTxFailed              = errors.New("chain: transaction reverted")
	ErrAttemptInFlight       = errors.New("purchase: an attempt for this ticket type is already in flight")

	// ErrPaidButUnrecorded marks the asymmetric failure: the on-chain payment
	// confirmed but the backend never acknowledged the report. The payment
	// must NOT be retried; only the report may be.
	ErrPaidButUnrecorded = errors.New("purchase: payment confirmed on-chain but could not be recorded")
)

// Stage identifies where in the purchase/transfer sequence a failure occurred.
type Stage string

const (
	StageValidatingInput    Stage = "validating_input"
	StageCheckingAllowance  Stage = "checking_allowance"
	StageApprovingAllowance Stage = "approving_allowance"
	StageSubmitting         Stage = "submitting"
	StageAwaitingConfirm    Stage = "awaiting_confirmation"
	StageReportingToBackend Stage = "reporting_to_backend"
)

// FlowError wraps a stage error so callers can map it to the right user
// message without string matching.
type FlowError struct {
	Stage  Stage
	TxHash string // set once a transaction has been submitted
	Err    error
}

func (e *FlowError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("%s (tx %s): %v", e.Stage, e.TxHash, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FlowError) Unwrap() error { return e.Err }

// Paid reports whether the wrapped failure happened after the on-chain
// payment already went through.
func (e *FlowError) Paid() bool {
	return e.Stage == StageReportingToBackend
}
