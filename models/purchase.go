package models

import "github.com/shopspring/decimal"

// PurchaseIntent is the ephemeral, client-side description of an attempted
// purchase. It is validated, used once, and discarded; it is never persisted.
type PurchaseIntent struct {
	TicketTypeID string          `json:"ticket_type_id"`
	ScheduleID   string          `json:"schedule_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
}

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// OnChainTransactionRecord is produced by the chain bridge once a submitted
// transaction has been observed.
type OnChainTransactionRecord struct {
	TxHash string   `json:"tx_hash"`
	Status TxStatus `json:"status"`
}

// PurchaseResult is returned to callers after a settled purchase attempt.
type PurchaseResult struct {
	TxHash      string          `json:"tx_hash"`
	TokenAmount string          `json:"token_amount"` // smallest-unit integer, decimal string
	TotalPrice  decimal.Decimal `json:"total_price"`
	Recorded    bool            `json:"recorded"` // false means paid on-chain but not mirrored
}

// TransferResult mirrors PurchaseResult for the transfer flow.
type TransferResult struct {
	TicketID string `json:"ticket_id"`
	TxHash   string `json:"tx_hash"`
	Recorded bool   `json:"recorded"`
}
