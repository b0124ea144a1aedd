package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"

	"ticket-chain/models"
)

// OrganizerBackend is the slice of the backend client the organizer views use.
type OrganizerBackend interface {
	Revenue(ctx context.Context, eventID string) (*models.RevenueStats, error)
	CheckInStats(ctx context.Context, eventID, scheduleID string) (*models.CheckInStats, error)
}

type OrganizerHandler struct {
	backend OrganizerBackend
}

func NewOrganizerHandler(backend OrganizerBackend) *OrganizerHandler {
	return &OrganizerHandler{backend: backend}
}

func (h *OrganizerHandler) Revenue(c echo.Context) error {
	stats, err := h.backend.Revenue(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  false,
			"message": "Failed to load revenue",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data":   stats,
	})
}

func (h *OrganizerHandler) CheckInStats(c echo.Context) error {
	stats, err := h.backend.CheckInStats(c.Request().Context(), c.PathParam("id"), c.QueryParam("schedule_id"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{
			"status":  false,
			"message": "Failed to load check-in stats",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data":   stats,
	})
}
