package services

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"time"

	"ticket-chain/internal/chain"
	"ticket-chain/internal/status"
	"ticket-chain/models"
	"ticket-chain/monitoring"
	"ticket-chain/utils"
)

// TransferBackend is the slice of the backend client the transfer flow needs.
type TransferBackend interface {
	GetTicket(ctx context.Context, ticketID string) (*models.UserTicket, error)
	ReportTransfer(ctx context.Context, ticketID, recipientEmail, txHash string) error
}

// TransferService moves a ticket on-chain and then mirrors the new ownership
// to the backend. It shares the purchase flow's failure asymmetry: once the
// chain transfer confirms, only the report is ever retried.
type TransferService struct {
	ticketing chain.TicketingContract
	waiter    chain.ReceiptWaiter
	backend   TransferBackend
	cache     Invalidator
	notifier  Publisher
	monitor   *monitoring.Monitor
	breaker   *utils.CircuitBreaker
}

func NewTransferService(
	ticketing chain.TicketingContract,
	waiter chain.ReceiptWaiter,
	backend TransferBackend,
	cache Invalidator,
	notifier Publisher,
	monitor *monitoring.Monitor,
) *TransferService {
	return &TransferService{
		ticketing: ticketing,
		waiter:    waiter,
		backend:   backend,
		cache:     cache,
		notifier:  notifier,
		monitor:   monitor,
		breaker:   utils.NewCircuitBreaker("report-transfer"),
	}
}

// Transfer executes one transfer attempt from the connected wallet. The
// ownership check against the mirror record is advisory UX; the contract
// enforces real ownership and will revert a transfer from a non-owner.
func (s *TransferService) Transfer(ctx context.Context, from string, req models.TransferRequest) (*models.TransferResult, error) {
	s.monitor.AttemptStarted()
	defer s.monitor.AttemptSettled()

	started := time.Now()
	ticket, ticketID, err := s.validate(ctx, from, req)
	s.monitor.TrackStage("transfer", string(status.StageValidatingInput), time.Since(started))
	if err != nil {
		s.monitor.TrackTransfer(monitoring.OutcomeInvalidInput)
		return nil, &status.FlowError{Stage: status.StageValidatingInput, Err: err}
	}

	started = time.Now()
	txHash, err := s.ticketing.TransferTicket(ctx, from, ticketID, req.ToAddress)
	s.monitor.TrackStage("transfer", string(status.StageSubmitting), time.Since(started))
	if err != nil {
		s.monitor.TrackTransfer(outcomeForChainErr(err))
		return nil, &status.FlowError{Stage: status.StageSubmitting, Err: err}
	}

	started = time.Now()
	if _, err := s.waiter.WaitMined(ctx, txHash); err != nil {
		s.monitor.TrackStage("transfer", string(status.StageAwaitingConfirm), time.Since(started))
		s.monitor.TrackTransfer(monitoring.OutcomeChainFailed)
		return nil, &status.FlowError{Stage: status.StageAwaitingConfirm, TxHash: txHash, Err: err}
	}
	s.monitor.TrackStage("transfer", string(status.StageAwaitingConfirm), time.Since(started))

	result := &models.TransferResult{TicketID: req.TicketID, TxHash: txHash}

	// The ticket has moved on-chain; failures from here are unrecorded, not
	// unsuccessful.
	started = time.Now()
	err = s.breaker.Do(func() error {
		return s.backend.ReportTransfer(ctx, req.TicketID, req.RecipientEmail, txHash)
	})
	s.monitor.TrackStage("transfer", string(status.StageReportingToBackend), time.Since(started))
	if err != nil {
		log.Printf("transfer: confirmed tx %s could not be recorded: %v", txHash, err)
		s.monitor.TrackTransfer(monitoring.OutcomePaidUnrecorded)
		s.notifier.Publish(userChannel(from), map[string]any{
			"type":      NoticeTransferUnrecorded,
			"ticket_id": req.TicketID,
			"tx_hash":   txHash,
		})
		return result, &status.FlowError{
			Stage:  status.StageReportingToBackend,
			TxHash: txHash,
			Err:    fmt.Errorf("%w: %v", status.ErrPaidButUnrecorded, err),
		}
	}

	result.Recorded = true

	// The old owner's detail and list views are now invalid; the UI navigates
	// away from the detail view after this settles.
	if err := s.cache.InvalidateTicket(ctx, req.TicketID, ticket.OwnerAddress); err != nil {
		log.Printf("transfer: invalidate ticket %s: %v", req.TicketID, err)
	}
	s.notifier.Publish(userChannel(from), map[string]any{
		"type":      NoticeTransferSuccess,
		"ticket_id": req.TicketID,
		"tx_hash":   txHash,
	})
	s.monitor.TrackTransfer(monitoring.OutcomeSuccess)

	return result, nil
}

// RetryReport re-runs only the backend mirroring for a confirmed transfer.
func (s *TransferService) RetryReport(ctx context.Context, from string, req models.TransferRequest, txHash string) error {
	err := s.breaker.Do(func() error {
		return s.backend.ReportTransfer(ctx, req.TicketID, req.RecipientEmail, txHash)
	})
	if err != nil {
		return &status.FlowError{
			Stage:  status.StageReportingToBackend,
			TxHash: txHash,
			Err:    fmt.Errorf("%w: %v", status.ErrPaidButUnrecorded, err),
		}
	}

	if err := s.cache.InvalidateTicket(ctx, req.TicketID, from); err != nil {
		log.Printf("transfer: invalidate ticket %s: %v", req.TicketID, err)
	}
	s.notifier.Publish(userChannel(from), map[string]any{
		"type":      NoticeTransferSuccess,
		"ticket_id": req.TicketID,
		"tx_hash":   txHash,
	})
	return nil
}

func (s *TransferService) validate(ctx context.Context, from string, req models.TransferRequest) (*models.UserTicket, *big.Int, error) {
	if from == "" {
		return nil, nil, status.ErrWalletNotConnected
	}
	if _, err := chain.ChecksumAddress(req.ToAddress); err != nil {
		return nil, nil, fmt.Errorf("recipient address: %w", err)
	}

	ticket, err := s.backend.GetTicket(ctx, req.TicketID)
	if err != nil {
		return nil, nil, err
	}
	if !chain.SameAddress(ticket.OwnerAddress, from) {
		return nil, nil, status.ErrNotTicketOwner
	}

	ticketID, err := parseChainID(ticket.TicketID)
	if err != nil {
		return nil, nil, fmt.Errorf("ticket id: %w", err)
	}

	// The mirror record can lag the chain. Confirm ownership against the
	// contract before submitting, so a stale mirror never burns gas on a
	// transfer the contract would revert.
	owner, err := s.ticketing.OwnerOf(ctx, ticketID)
	if err != nil {
		return nil, nil, fmt.Errorf("owner lookup: %w", err)
	}
	if !chain.SameAddress(owner, from) {
		return nil, nil, status.ErrNotTicketOwner
	}
	return ticket, ticketID, nil
}
