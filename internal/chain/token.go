package chain

import (
	"context"
	"fmt"
	"math/big"
)

// ERC20 binds the payment token contract over the JSON-RPC client.
type ERC20 struct {
	rpc  *Client
	addr string
}

func NewERC20(rpc *Client, addr string) *ERC20 {
	return &ERC20{rpc: rpc, addr: addr}
}

func (t *ERC20) Allowance(ctx context.Context, owner, spender string) (*big.Int, error) {
	data, err := pack("allowance(address,address)", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("Allowance: %w", err)
	}

	result, err := t.rpc.CallContract(ctx, t.addr, data)
	if err != nil {
		return nil, fmt.Errorf("Allowance: %w", err)
	}

	amount, err := decodeUint256(result)
	if err != nil {
		return nil, fmt.Errorf("Allowance: %w", err)
	}
	return amount, nil
}

func (t *ERC20) Approve(ctx context.Context, from, spender string, amount *big.Int) (string, error) {
	data, err := pack("approve(address,uint256)", spender, amount)
	if err != nil {
		return "", fmt.Errorf("Approve: %w", err)
	}

	txHash, err := t.rpc.SendTransaction(ctx, from, t.addr, data)
	if err != nil {
		return "", fmt.Errorf("Approve: %w", err)
	}
	return txHash, nil
}
