package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ticket-chain/models"
)

// ListEvents returns one page of the public event catalog.
func (c *Client) ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var data models.Page
	if err := c.do(ctx, http.MethodGet, "/api/events", query, nil, &data); err != nil {
		return nil, 0, fmt.Errorf("ListEvents: %w", err)
	}

	var events []models.Event
	if len(data.Rows) > 0 {
		if err := json.Unmarshal(data.Rows, &events); err != nil {
			return nil, 0, fmt.Errorf("ListEvents: rows: %v", err)
		}
	}
	return events, data.Count, nil
}

// GetEvent returns an event with its schedules and ticket types, including
// the advisory remaining-quantity snapshot the purchase flow validates
// against.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/"+eventID, nil, nil, &event); err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return &event, nil
}
