package chain

import (
	"context"
	"fmt"
	"math/big"
)

// Ticketing binds the event/ticketing contract over the JSON-RPC client.
type Ticketing struct {
	rpc  *Client
	addr string
}

func NewTicketing(rpc *Client, addr string) *Ticketing {
	return &Ticketing{rpc: rpc, addr: addr}
}

func (t *Ticketing) Address() string { return t.addr }

func (t *Ticketing) BuyTicket(ctx context.Context, from string, ticketTypeID, quantity, tokenAmount, scheduleID *big.Int) (string, error) {
	data, err := pack("buyTicket(uint256,uint256,uint256,uint256)", ticketTypeID, quantity, tokenAmount, scheduleID)
	if err != nil {
		return "", fmt.Errorf("BuyTicket: %w", err)
	}

	txHash, err := t.rpc.SendTransaction(ctx, from, t.addr, data)
	if err != nil {
		return "", fmt.Errorf("BuyTicket: %w", err)
	}
	return txHash, nil
}

func (t *Ticketing) TransferTicket(ctx context.Context, from string, ticketID *big.Int, to string) (string, error) {
	data, err := pack("transferTicket(uint256,address)", ticketID, to)
	if err != nil {
		return "", fmt.Errorf("TransferTicket: %w", err)
	}

	txHash, err := t.rpc.SendTransaction(ctx, from, t.addr, data)
	if err != nil {
		return "", fmt.Errorf("TransferTicket: %w", err)
	}
	return txHash, nil
}

func (t *Ticketing) OwnerOf(ctx context.Context, ticketID *big.Int) (string, error) {
	data, err := pack("ownerOf(uint256)", ticketID)
	if err != nil {
		return "", fmt.Errorf("OwnerOf: %w", err)
	}

	result, err := t.rpc.CallContract(ctx, t.addr, data)
	if err != nil {
		return "", fmt.Errorf("OwnerOf: %w", err)
	}

	owner, err := decodeAddress(result)
	if err != nil {
		return "", fmt.Errorf("OwnerOf: %w", err)
	}
	return owner, nil
}
