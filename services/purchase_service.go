package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ticket-chain/internal/chain"
	"ticket-chain/internal/status"
	"ticket-chain/internal/token"
	"ticket-chain/models"
	"ticket-chain/monitoring"
	"ticket-chain/utils"
)

// PurchaseReporter is the slice of the backend client the purchase flow
// needs.
type PurchaseReporter interface {
	ReportPurchase(ctx context.Context, txHash string) error
}

// Invalidator drops cached reads a settled flow made stale.
type Invalidator interface {
	InvalidateEvent(ctx context.Context, eventID string) error
	InvalidateTicket(ctx context.Context, ticketID, ownerAddress string) error
}

// PurchaseService runs the on-chain ticket purchase sequence: validate the
// intent, top up the token allowance if short, submit the purchase, wait for
// one confirmation, then mirror the result to the backend. The chain write is
// irreversible; only the backend report may ever be retried.
type PurchaseService struct {
	tokenContract chain.TokenContract
	ticketing     chain.TicketingContract
	waiter        chain.ReceiptWaiter
	backend       PurchaseReporter
	cache         Invalidator
	notifier      Publisher
	monitor       *monitoring.Monitor
	breaker       *utils.CircuitBreaker

	// decimals is the payment token's declared precision.
	decimals int32

	// inFlight guards each ticket-type/schedule pair against duplicate
	// submissions. Attempts on different pairs proceed independently.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewPurchaseService(
	tokenContract chain.TokenContract,
	ticketing chain.TicketingContract,
	waiter chain.ReceiptWaiter,
	backend PurchaseReporter,
	cache Invalidator,
	notifier Publisher,
	monitor *monitoring.Monitor,
	decimals int32,
) *PurchaseService {
	return &PurchaseService{
		tokenContract: tokenContract,
		ticketing:     ticketing,
		waiter:        waiter,
		backend:       backend,
		cache:         cache,
		notifier:      notifier,
		monitor:       monitor,
		breaker:       utils.NewCircuitBreaker("report-purchase"),
		decimals:      decimals,
		inFlight:      make(map[string]struct{}),
	}
}

// Buy executes one purchase attempt for the connected wallet. remaining is
// the last fetched inventory snapshot; it is advisory and the contract stays
// the final arbiter. On a reporting failure the returned result still carries
// the confirmed transaction hash with Recorded=false so the caller can offer
// RetryReport, never a second payment.
func (s *PurchaseService) Buy(ctx context.Context, buyer, eventID string, intent models.PurchaseIntent, remaining int64) (*models.PurchaseResult, error) {
	attemptKey := intent.TicketTypeID + "/" + intent.ScheduleID
	if !s.acquire(attemptKey) {
		return nil, status.ErrAttemptInFlight
	}
	defer s.release(attemptKey)

	s.monitor.AttemptStarted()
	defer s.monitor.AttemptSettled()

	// Stage: input validation. Nothing has touched the network yet, so a
	// failure here is free to retry.
	started := time.Now()
	typeID, scheduleID, err := s.validate(buyer, intent, remaining)
	s.monitor.TrackStage("purchase", string(status.StageValidatingInput), time.Since(started))
	if err != nil {
		s.monitor.TrackPurchase(monitoring.OutcomeInvalidInput)
		return nil, &status.FlowError{Stage: status.StageValidatingInput, Err: err}
	}

	cost, err := token.Cost(intent.UnitPrice, intent.Quantity, s.decimals)
	if err != nil {
		s.monitor.TrackPurchase(monitoring.OutcomeInvalidInput)
		return nil, &status.FlowError{Stage: status.StageValidatingInput, Err: err}
	}

	// Stage: allowance. Approve exactly the cost when short; an unlimited
	// allowance is never requested.
	if err := s.ensureAllowance(ctx, buyer, cost); err != nil {
		s.monitor.TrackPurchase(outcomeForChainErr(err))
		return nil, err
	}

	// Stage: submit and confirm the purchase itself.
	started = time.Now()
	txHash, err := s.ticketing.BuyTicket(ctx, buyer, typeID, big.NewInt(intent.Quantity), cost, scheduleID)
	s.monitor.TrackStage("purchase", string(status.StageSubmitting), time.Since(started))
	if err != nil {
		s.monitor.TrackPurchase(outcomeForChainErr(err))
		return nil, &status.FlowError{Stage: status.StageSubmitting, Err: err}
	}

	started = time.Now()
	if _, err := s.waiter.WaitMined(ctx, txHash); err != nil {
		s.monitor.TrackStage("purchase", string(status.StageAwaitingConfirm), time.Since(started))
		s.monitor.TrackPurchase(monitoring.OutcomeChainFailed)
		return nil, &status.FlowError{Stage: status.StageAwaitingConfirm, TxHash: txHash, Err: err}
	}
	s.monitor.TrackStage("purchase", string(status.StageAwaitingConfirm), time.Since(started))

	result := &models.PurchaseResult{
		TxHash:      txHash,
		TokenAmount: cost.String(),
		TotalPrice:  intent.UnitPrice.Mul(decimal.NewFromInt(intent.Quantity)),
	}

	// Stage: mirror to the backend. The tokens have already moved; from here
	// on every failure is the paid-but-unrecorded case.
	started = time.Now()
	err = s.breaker.Do(func() error {
		return s.backend.ReportPurchase(ctx, txHash)
	})
	s.monitor.TrackStage("purchase", string(status.StageReportingToBackend), time.Since(started))
	refID, _ := utils.GenerateCode(4)
	if err != nil {
		log.Printf("purchase: confirmed tx %s could not be recorded: %v", txHash, err)
		s.monitor.TrackPurchase(monitoring.OutcomePaidUnrecorded)
		s.notifier.Publish(userChannel(buyer), map[string]any{
			"type":    NoticePurchaseUnrecorded,
			"ref":     refID,
			"tx_hash": txHash,
		})
		// The backend never acknowledged, so cached inventory is left alone.
		return result, &status.FlowError{
			Stage:  status.StageReportingToBackend,
			TxHash: txHash,
			Err:    fmt.Errorf("%w: %v", status.ErrPaidButUnrecorded, err),
		}
	}

	result.Recorded = true

	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		log.Printf("purchase: invalidate event %s: %v", eventID, err)
	}
	s.notifier.Publish(userChannel(buyer), map[string]any{
		"type":           NoticePurchaseSuccess,
		"ref":            refID,
		"tx_hash":        txHash,
		"ticket_type_id": intent.TicketTypeID,
		"quantity":       intent.Quantity,
	})
	s.monitor.TrackPurchase(monitoring.OutcomeSuccess)

	return result, nil
}

// RetryReport re-runs only the backend mirroring for an already confirmed
// transaction hash. The backend keys mirror records by hash, so repeats
// cannot double-credit.
func (s *PurchaseService) RetryReport(ctx context.Context, buyer, eventID, txHash string) error {
	err := s.breaker.Do(func() error {
		return s.backend.ReportPurchase(ctx, txHash)
	})
	if err != nil {
		return &status.FlowError{
			Stage:  status.StageReportingToBackend,
			TxHash: txHash,
			Err:    fmt.Errorf("%w: %v", status.ErrPaidButUnrecorded, err),
		}
	}

	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		log.Printf("purchase: invalidate event %s: %v", eventID, err)
	}
	s.notifier.Publish(userChannel(buyer), map[string]any{
		"type":    NoticePurchaseSuccess,
		"tx_hash": txHash,
	})
	return nil
}

// validate applies the client-side preconditions. All of them run before any
// network or chain call.
func (s *PurchaseService) validate(buyer string, intent models.PurchaseIntent, remaining int64) (typeID, scheduleID *big.Int, err error) {
	if buyer == "" {
		return nil, nil, status.ErrWalletNotConnected
	}
	if intent.Quantity < 1 {
		return nil, nil, status.ErrInvalidQuantity
	}
	if intent.Quantity > remaining {
		return nil, nil, status.ErrInsufficientInventory
	}

	typeID, err = parseChainID(intent.TicketTypeID)
	if err != nil {
		return nil, nil, fmt.Errorf("ticket type id: %w", err)
	}
	scheduleID, err = parseChainID(intent.ScheduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule id: %w", err)
	}
	return typeID, scheduleID, nil
}

// ensureAllowance reads the current allowance and, only when it falls short,
// approves exactly the required amount and waits for that approval to mine.
// The approval is strictly ordered before the purchase submission.
func (s *PurchaseService) ensureAllowance(ctx context.Context, buyer string, cost *big.Int) error {
	started := time.Now()
	allowance, err := s.tokenContract.Allowance(ctx, buyer, s.ticketing.Address())
	s.monitor.TrackStage("purchase", string(status.StageCheckingAllowance), time.Since(started))
	if err != nil {
		return &status.FlowError{Stage: status.StageCheckingAllowance, Err: err}
	}
	if allowance.Cmp(cost) >= 0 {
		return nil
	}

	started = time.Now()
	approveHash, err := s.tokenContract.Approve(ctx, buyer, s.ticketing.Address(), cost)
	if err != nil {
		s.monitor.TrackStage("purchase", string(status.StageApprovingAllowance), time.Since(started))
		return &status.FlowError{Stage: status.StageApprovingAllowance, Err: err}
	}
	if _, err := s.waiter.WaitMined(ctx, approveHash); err != nil {
		s.monitor.TrackStage("purchase", string(status.StageApprovingAllowance), time.Since(started))
		return &status.FlowError{Stage: status.StageApprovingAllowance, TxHash: approveHash, Err: err}
	}
	s.monitor.TrackStage("purchase", string(status.StageApprovingAllowance), time.Since(started))
	return nil
}

func (s *PurchaseService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *PurchaseService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

func outcomeForChainErr(err error) string {
	if errors.Is(err, status.ErrUserRejected) {
		return monitoring.OutcomeRejected
	}
	return monitoring.OutcomeChainFailed
}

// parseChainID converts a backend entity id into the contract's uint256 form.
func parseChainID(id string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(id, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("id %q is not an on-chain id", id)
	}
	return n, nil
}
