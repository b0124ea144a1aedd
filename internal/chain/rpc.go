package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"context"

	"ticket-chain/internal/status"
)

// EIP-1193 error code for a user declining the signature prompt.
const codeUserRejected = 4001

type ClientConfig struct {
	// RPCURL is the wallet provider's JSON-RPC endpoint.
	RPCURL string

	// PollInterval is how often WaitMined asks for a receipt.
	PollInterval time.Duration

	// PollTimeout bounds how long WaitMined blocks for one confirmation.
	PollTimeout time.Duration
}

// Client speaks JSON-RPC to the wallet provider. It implements ReceiptWaiter
// and is the transport under the contract bindings.
type Client struct {
	rpcURL       string
	pollInterval time.Duration
	pollTimeout  time.Duration

	// nextID numbers JSON-RPC requests.
	nextID atomic.Uint64

	// hc is the http client.
	hc *http.Client
}

func NewClient(c *ClientConfig) *Client {
	interval := c.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	timeout := c.PollTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		rpcURL:       c.RPCURL,
		pollInterval: interval,
		pollTimeout:  timeout,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC round trip.
func (c *Client) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("rpcCall: json.Marshal: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rpcCall: http.NewReq: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpcCall: http.Do: %w", err)
	}
	defer resp.Body.Close()

	var reply struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("rpcCall: json.Decode: %v", err)
	}
	if reply.Error != nil {
		if isUserRejection(reply.Error) {
			return nil, fmt.Errorf("rpcCall %s: %w", method, status.ErrUserRejected)
		}
		return nil, fmt.Errorf("rpcCall %s: %w", method, reply.Error)
	}

	return reply.Result, nil
}

// isUserRejection recognizes a declined signature prompt. Providers disagree
// on the exact shape, so the message text is checked as a fallback to the
// EIP-1193 code.
func isUserRejection(e *rpcError) bool {
	if e.Code == codeUserRejected {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "user denied") || strings.Contains(msg, "user rejected")
}

// CallContract performs a read-only eth_call against the given contract.
func (c *Client) CallContract(ctx context.Context, to string, data []byte) (string, error) {
	raw, err := c.call(ctx, "eth_call", map[string]any{
		"to":   to,
		"data": "0x" + hex.EncodeToString(data),
	}, "latest")
	if err != nil {
		return "", err
	}

	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("CallContract: json.Unmarshal: %v", err)
	}
	return result, nil
}

// SendTransaction submits a state-changing call through the provider's signer
// and returns the transaction hash.
func (c *Client) SendTransaction(ctx context.Context, from, to string, data []byte) (string, error) {
	raw, err := c.call(ctx, "eth_sendTransaction", map[string]any{
		"from": from,
		"to":   to,
		"data": "0x" + hex.EncodeToString(data),
	})
	if err != nil {
		return "", err
	}

	var txHash string
	if err := json.Unmarshal(raw, &txHash); err != nil {
		return "", fmt.Errorf("SendTransaction: json.Unmarshal: %v", err)
	}
	return txHash, nil
}

// WaitMined polls for the transaction receipt until one confirmation or the
// poll timeout. A receipt with status 0x0 yields ErrTxFailed.
func (c *Client) WaitMined(ctx context.Context, txHash string) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.transactionReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if !receipt.Succeeded {
				return receipt, fmt.Errorf("WaitMined %s: %w", txHash, status.ErrTxFailed)
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("WaitMined %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// transactionReceipt returns nil, nil while the transaction is still pending.
func (c *Client) transactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	raw, err := c.call(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var reply struct {
		TransactionHash string `json:"transactionHash"`
		BlockNumber     string `json:"blockNumber"`
		Status          string `json:"status"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("transactionReceipt: json.Unmarshal: %v", err)
	}

	blockNumber, _ := strconv.ParseUint(strings.TrimPrefix(reply.BlockNumber, "0x"), 16, 64)
	return &Receipt{
		TxHash:      reply.TransactionHash,
		BlockNumber: blockNumber,
		Succeeded:   strings.EqualFold(reply.Status, "0x1"),
	}, nil
}
