// Package chain wraps the wallet provider's JSON-RPC surface: reading and
// writing the payment token's allowance, invoking the ticketing contract, and
// waiting for transaction receipts. Addresses are 0x-prefixed hex strings and
// amounts are *big.Int in the token's smallest unit.
package chain

import (
	"context"
	"math/big"
)

// TokenContract is the ERC20-style payment token surface the purchase flow
// needs.
type TokenContract interface {
	// Allowance returns how much the owner has authorized the spender to
	// transfer on their behalf.
	Allowance(ctx context.Context, owner, spender string) (*big.Int, error)

	// Approve authorizes the spender for exactly amount and returns the
	// transaction hash.
	Approve(ctx context.Context, from, spender string, amount *big.Int) (string, error)
}

// TicketingContract is the event/ticketing contract surface.
type TicketingContract interface {
	// Address returns the deployed contract address, used as the token
	// spender for allowance checks.
	Address() string

	BuyTicket(ctx context.Context, from string, ticketTypeID, quantity, tokenAmount, scheduleID *big.Int) (string, error)

	TransferTicket(ctx context.Context, from string, ticketID *big.Int, to string) (string, error)

	// OwnerOf reads the current on-chain owner of a ticket.
	OwnerOf(ctx context.Context, ticketID *big.Int) (string, error)
}

// ReceiptWaiter blocks until a submitted transaction is mined. One
// confirmation is sufficient; there is no re-org handling.
type ReceiptWaiter interface {
	WaitMined(ctx context.Context, txHash string) (*Receipt, error)
}

// Receipt is the subset of a transaction receipt the flows care about.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Succeeded   bool
}
