package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"ticket-chain/models"
)

// ReportPurchase tells the backend a purchase transaction confirmed on-chain.
// The backend keys the mirror record by hash, so re-reporting the same hash
// must not double-credit; this client does not enforce that itself.
func (c *Client) ReportPurchase(ctx context.Context, txHash string) error {
	body := map[string]string{"paymentTxhash": txHash}
	if err := c.do(ctx, http.MethodPost, "/api/tickets/payment", nil, body, nil); err != nil {
		return fmt.Errorf("ReportPurchase: %w", err)
	}
	return nil
}

// ReportTransfer mirrors a confirmed on-chain ticket transfer. The email is
// only for the backend's notification to the recipient; it never goes
// on-chain.
func (c *Client) ReportTransfer(ctx context.Context, ticketID, recipientEmail, txHash string) error {
	body := map[string]string{
		"ticketId": ticketID,
		"email":    recipientEmail,
		"txhash":   txHash,
	}
	if err := c.do(ctx, http.MethodPost, "/api/tickets/transfer", nil, body, nil); err != nil {
		return fmt.Errorf("ReportTransfer: %w", err)
	}
	return nil
}

// MyTickets lists tickets owned by the connected wallet.
func (c *Client) MyTickets(ctx context.Context, ownerAddress string, page, limit int) ([]models.UserTicket, int64, error) {
	query := url.Values{}
	query.Set("owner", ownerAddress)
	query.Set("page", fmt.Sprint(page))
	query.Set("limit", fmt.Sprint(limit))

	var data models.Page
	if err := c.do(ctx, http.MethodGet, "/api/tickets", query, nil, &data); err != nil {
		return nil, 0, fmt.Errorf("MyTickets: %w", err)
	}

	var tickets []models.UserTicket
	if len(data.Rows) > 0 {
		if err := json.Unmarshal(data.Rows, &tickets); err != nil {
			return nil, 0, fmt.Errorf("MyTickets: rows: %v", err)
		}
	}
	return tickets, data.Count, nil
}

// GetTicket returns one ticket's mirror record.
func (c *Client) GetTicket(ctx context.Context, ticketID string) (*models.UserTicket, error) {
	var ticket models.UserTicket
	if err := c.do(ctx, http.MethodGet, "/api/tickets/"+ticketID, nil, nil, &ticket); err != nil {
		return nil, fmt.Errorf("GetTicket: %w", err)
	}
	return &ticket, nil
}

// TicketQR fetches the check-in QR payload for a ticket.
func (c *Client) TicketQR(ctx context.Context, ticketID string) (string, error) {
	var data struct {
		QR string `json:"qr"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tickets/"+ticketID+"/qr", nil, nil, &data); err != nil {
		return "", fmt.Errorf("TicketQR: %w", err)
	}
	return data.QR, nil
}
