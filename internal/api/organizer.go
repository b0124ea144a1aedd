package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ticket-chain/models"
)

// Revenue returns the organizer's revenue statistics for an event.
func (c *Client) Revenue(ctx context.Context, eventID string) (*models.RevenueStats, error) {
	var stats models.RevenueStats
	if err := c.do(ctx, http.MethodGet, "/api/organizer/events/"+eventID+"/revenue", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("Revenue: %w", err)
	}
	return &stats, nil
}

// CheckInStats returns issued vs checked-in counts for a schedule.
func (c *Client) CheckInStats(ctx context.Context, eventID, scheduleID string) (*models.CheckInStats, error) {
	query := url.Values{}
	if scheduleID != "" {
		query.Set("schedule_id", scheduleID)
	}

	var stats models.CheckInStats
	if err := c.do(ctx, http.MethodGet, "/api/organizer/events/"+eventID+"/check-in", query, nil, &stats); err != nil {
		return nil, fmt.Errorf("CheckInStats: %w", err)
	}
	return &stats, nil
}
