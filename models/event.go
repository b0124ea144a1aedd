package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          string       `json:"id"`
	OrganizerID string       `json:"organizer_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Venue       string       `json:"venue"`
	ImageURL    string       `json:"image_url,omitempty"`
	Status      string       `json:"status"` // draft, published, started, ended
	Schedules   []Schedule   `json:"schedules,omitempty"`
	TicketTypes []TicketType `json:"ticket_types,omitempty"`
}

type Schedule struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// TicketType is a sale category within an event. RemainingQuantity is owned
// by the backend; the client treats it as an advisory snapshot and the
// contract is the final arbiter of availability.
type TicketType struct {
	ID                string          `json:"id"`
	EventID           string          `json:"event_id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	OriginalQuantity  int64           `json:"original_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
}

// Sold returns how many tickets of this type have been sold according to the
// last fetched snapshot.
func (t TicketType) Sold() int64 {
	return t.OriginalQuantity - t.RemainingQuantity
}

type RevenueStats struct {
	EventID      string              `json:"event_id"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	TicketsSold  int64               `json:"tickets_sold"`
	ByTicketType []TicketTypeRevenue `json:"by_ticket_type"`
}

type TicketTypeRevenue struct {
	TicketTypeID string          `json:"ticket_type_id"`
	Name         string          `json:"name"`
	Sold         int64           `json:"sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type CheckInStats struct {
	EventID    string `json:"event_id"`
	ScheduleID string `json:"schedule_id"`
	Issued     int64  `json:"issued"`
	CheckedIn  int64  `json:"checked_in"`
}
