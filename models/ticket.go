package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTicket is the backend's mirror row for a completed purchase. The
// backend creates it only after the client reports a confirmed transaction
// hash; this client never constructs one.
type PaymentTicket struct {
	ID            string          `json:"id"`
	TicketTypeID  string          `json:"ticket_type_id"`
	ScheduleID    string          `json:"schedule_id"`
	BuyerAddress  string          `json:"buyer_address"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PaymentTxHash string          `json:"payment_txhash"`
	CreatedAt     time.Time       `json:"created_at"`
}

// UserTicket associates a wallet address with a purchased ticket. Transfers
// change the on-chain association first; the backend row follows.
type UserTicket struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"` // on-chain ticket id
	EventID      string    `json:"event_id"`
	ScheduleID   string    `json:"schedule_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	OwnerAddress string    `json:"owner_address"`
	Status       string    `json:"status"` // valid, checked_in, transferred
	IssuedAt     time.Time `json:"issued_at"`
}

type TransferRequest struct {
	TicketID       string `json:"ticket_id"`
	ToAddress      string `json:"to_address"`
	RecipientEmail string `json:"recipient_email"` // backend notification only, never on-chain
}
