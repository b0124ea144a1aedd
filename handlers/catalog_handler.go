package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"ticket-chain/models"
)

// CatalogReads is the slice of the catalog service the HTTP layer serves.
type CatalogReads interface {
	ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	MyTickets(ctx context.Context, ownerAddress string, page, limit int) ([]models.UserTicket, int64, error)
	GetTicket(ctx context.Context, ticketID string) (*models.UserTicket, error)
	TicketQR(ctx context.Context, ticketID string) (string, error)
}

type CatalogHandler struct {
	catalogService CatalogReads
}

func NewCatalogHandler(catalogService CatalogReads) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListEvents(c echo.Context) error {
	page, limit := pagination(c)

	events, count, err := h.catalogService.ListEvents(c.Request().Context(), page, limit)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  false,
			"message": "Failed to load events",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"count": count,
			"rows":  events,
		},
	})
}

func (h *CatalogHandler) GetEvent(c echo.Context) error {
	event, err := h.catalogService.GetEvent(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{
			"status":  false,
			"message": "Event not found",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data":   event,
	})
}

func (h *CatalogHandler) MyTickets(c echo.Context) error {
	owner := c.QueryParam("owner")
	if owner == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "owner is required",
		})
	}
	page, limit := pagination(c)

	tickets, count, err := h.catalogService.MyTickets(c.Request().Context(), owner, page, limit)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  false,
			"message": "Failed to load tickets",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"count": count,
			"rows":  tickets,
		},
	})
}

func (h *CatalogHandler) GetTicket(c echo.Context) error {
	ticket, err := h.catalogService.GetTicket(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{
			"status":  false,
			"message": "Ticket not found",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data":   ticket,
	})
}

func (h *CatalogHandler) TicketQR(c echo.Context) error {
	qr, err := h.catalogService.TicketQR(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{
			"status":  false,
			"message": "QR code not available",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"qr": qr},
	})
}

func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
