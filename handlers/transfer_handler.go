package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"

	"ticket-chain/models"
)

// TransferFlow is the slice of the transfer service the HTTP layer drives.
type TransferFlow interface {
	Transfer(ctx context.Context, from string, req models.TransferRequest) (*models.TransferResult, error)
	RetryReport(ctx context.Context, from string, req models.TransferRequest, txHash string) error
}

type TransferHandler struct {
	transferService TransferFlow
}

func NewTransferHandler(transferService TransferFlow) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

func (h *TransferHandler) Transfer(c echo.Context) error {
	var req struct {
		FromAddress    string `json:"from_address"`
		TicketID       string `json:"ticket_id"`
		ToAddress      string `json:"to_address"`
		RecipientEmail string `json:"recipient_email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "Invalid request",
		})
	}

	transferReq := models.TransferRequest{
		TicketID:       req.TicketID,
		ToAddress:      req.ToAddress,
		RecipientEmail: req.RecipientEmail,
	}

	result, err := h.transferService.Transfer(c.Request().Context(), req.FromAddress, transferReq)
	if err != nil {
		return respondFlowError(c, err, result)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data":   result,
	})
}

func (h *TransferHandler) RetryReport(c echo.Context) error {
	var req struct {
		FromAddress    string `json:"from_address"`
		TicketID       string `json:"ticket_id"`
		RecipientEmail string `json:"recipient_email"`
		TxHash         string `json:"tx_hash"`
	}
	if err := c.Bind(&req); err != nil || req.TxHash == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "Invalid request",
		})
	}

	transferReq := models.TransferRequest{
		TicketID:       req.TicketID,
		RecipientEmail: req.RecipientEmail,
	}
	if err := h.transferService.RetryReport(c.Request().Context(), req.FromAddress, transferReq, req.TxHash); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  false,
			"message": "Recording is still failing; the transfer itself is safe. Try again later.",
			"tx_hash": req.TxHash,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  true,
		"message": "Transfer recorded",
	})
}
