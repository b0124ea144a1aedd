package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ticket-chain/internal/cache"
	"ticket-chain/models"
)

// CatalogBackend is the slice of the backend client the catalog reads use.
type CatalogBackend interface {
	ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	MyTickets(ctx context.Context, ownerAddress string, page, limit int) ([]models.UserTicket, int64, error)
	GetTicket(ctx context.Context, ticketID string) (*models.UserTicket, error)
	TicketQR(ctx context.Context, ticketID string) (string, error)
}

// CatalogCache is the read/write slice of the query-key cache.
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, out any) error
	SetJSON(ctx context.Context, key string, value any) error
}

// CatalogService serves the storefront's reads through the query-key cache.
// Entries expire by TTL; the purchase and transfer flows invalidate them
// eagerly when they change inventory or ownership.
type CatalogService struct {
	backend CatalogBackend
	cache   CatalogCache
}

func NewCatalogService(backend CatalogBackend, catalogCache CatalogCache) *CatalogService {
	return &CatalogService{backend: backend, cache: catalogCache}
}

type eventPage struct {
	Count  int64          `json:"count"`
	Events []models.Event `json:"events"`
}

func (s *CatalogService) ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error) {
	key := cache.EventListKey(page, limit)

	var cached eventPage
	err := s.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached.Events, cached.Count, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Printf("catalog: cache read %s: %v", key, err)
	}

	events, count, err := s.backend.ListEvents(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("ListEvents: %w", err)
	}

	if err := s.cache.SetJSON(ctx, key, eventPage{Count: count, Events: events}); err != nil {
		log.Printf("catalog: cache write %s: %v", key, err)
	}
	return events, count, nil
}

func (s *CatalogService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	key := cache.EventDetailKey(eventID)

	var cached models.Event
	err := s.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Printf("catalog: cache read %s: %v", key, err)
	}

	event, err := s.backend.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}

	if err := s.cache.SetJSON(ctx, key, event); err != nil {
		log.Printf("catalog: cache write %s: %v", key, err)
	}
	return event, nil
}

func (s *CatalogService) MyTickets(ctx context.Context, ownerAddress string, page, limit int) ([]models.UserTicket, int64, error) {
	tickets, count, err := s.backend.MyTickets(ctx, ownerAddress, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("MyTickets: %w", err)
	}
	return tickets, count, nil
}

func (s *CatalogService) GetTicket(ctx context.Context, ticketID string) (*models.UserTicket, error) {
	ticket, err := s.backend.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("GetTicket: %w", err)
	}
	return ticket, nil
}

func (s *CatalogService) TicketQR(ctx context.Context, ticketID string) (string, error) {
	qr, err := s.backend.TicketQR(ctx, ticketID)
	if err != nil {
		return "", fmt.Errorf("TicketQR: %w", err)
	}
	return qr, nil
}
