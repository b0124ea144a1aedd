package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"

	"ticket-chain/internal/status"
	"ticket-chain/models"
)

// PurchaseFlow is the slice of the purchase service the HTTP layer drives.
type PurchaseFlow interface {
	Buy(ctx context.Context, buyer, eventID string, intent models.PurchaseIntent, remaining int64) (*models.PurchaseResult, error)
	RetryReport(ctx context.Context, buyer, eventID, txHash string) error
}

type PurchaseHandler struct {
	purchaseService PurchaseFlow
}

func NewPurchaseHandler(purchaseService PurchaseFlow) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) Buy(c echo.Context) error {
	var req struct {
		BuyerAddress      string          `json:"buyer_address"`
		EventID           string          `json:"event_id"`
		TicketTypeID      string          `json:"ticket_type_id"`
		ScheduleID        string          `json:"schedule_id"`
		UnitPrice         decimal.Decimal `json:"unit_price"`
		Quantity          int64           `json:"quantity"`
		RemainingQuantity int64           `json:"remaining_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "Invalid request",
		})
	}

	intent := models.PurchaseIntent{
		TicketTypeID: req.TicketTypeID,
		ScheduleID:   req.ScheduleID,
		UnitPrice:    req.UnitPrice,
		Quantity:     req.Quantity,
	}

	result, err := h.purchaseService.Buy(c.Request().Context(), req.BuyerAddress, req.EventID, intent, req.RemainingQuantity)
	if err != nil {
		return respondFlowError(c, err, result)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data":   result,
	})
}

func (h *PurchaseHandler) RetryReport(c echo.Context) error {
	var req struct {
		BuyerAddress string `json:"buyer_address"`
		EventID      string `json:"event_id"`
		TxHash       string `json:"tx_hash"`
	}
	if err := c.Bind(&req); err != nil || req.TxHash == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "Invalid request",
		})
	}

	if err := h.purchaseService.RetryReport(c.Request().Context(), req.BuyerAddress, req.EventID, req.TxHash); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  false,
			"message": "Recording is still failing; the payment itself is safe. Try again later.",
			"tx_hash": req.TxHash,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  true,
		"message": "Purchase recorded",
	})
}

// respondFlowError maps a settled flow failure onto the response the UI
// renders. The paid-but-unrecorded case gets its own shape: the payment is
// done, retrying it would double-charge, and only the report is retriable.
func respondFlowError(c echo.Context, err error, result any) error {
	var flowErr *status.FlowError
	if errors.As(err, &flowErr) && flowErr.Paid() {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":    false,
			"message":   "Payment succeeded on-chain but the system could not record it. Do NOT pay again; retry recording instead.",
			"paid":      true,
			"retriable": "report",
			"tx_hash":   flowErr.TxHash,
			"data":      result,
		})
	}

	switch {
	case errors.Is(err, status.ErrAttemptInFlight):
		return c.JSON(http.StatusConflict, map[string]any{
			"status":  false,
			"message": "This purchase is already being processed",
		})
	case errors.Is(err, status.ErrUserRejected):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "Transaction signature was rejected in the wallet",
		})
	case errors.Is(err, status.ErrWalletNotConnected),
		errors.Is(err, status.ErrInvalidQuantity),
		errors.Is(err, status.ErrInsufficientInventory),
		errors.Is(err, status.ErrNotTicketOwner):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": err.Error(),
		})
	}

	if flowErr != nil && flowErr.Stage == status.StageValidatingInput {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": err.Error(),
		})
	}
	return c.JSON(http.StatusBadGateway, map[string]any{
		"status":  false,
		"message": err.Error(),
	})
}
