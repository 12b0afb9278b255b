package store

import (
	"context"
	"encoding/json"
	"time"

	"waitline/internal/models"
)

type JoinInput struct {
	RequestID    string
	ServiceID    string
	CustomerName string
	Email        string
	Phone        string
	CreatedAt    time.Time
}

type AdvanceInput struct {
	TicketID   string
	NewStatus  string
	OccurredAt time.Time
}

type ServiceInput struct {
	Name          string
	AvgMinutes    int
	Icon          string
	NextServiceID string
}

// TicketView is a ticket together with its queue position: PeopleAhead
// counts waiting/serving tickets of the same service with a strictly
// smaller order key.
type TicketView struct {
	models.Ticket
	PeopleAhead          int `json:"people_ahead"`
	EstimatedWaitMinutes int `json:"estimated_wait_minutes"`
}

type AnalyticsReport struct {
	TotalCompleted     int     `json:"total_completed"`
	MostPopularService string  `json:"most_popular_service"`
	HourlyHistogram    [24]int `json:"hourly_histogram"`
}

type OutboxEvent struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	ServiceID string          `json:"service_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type TicketStore interface {
	JoinQueue(ctx context.Context, input JoinInput) (models.Ticket, bool, error)
	GetTicketView(ctx context.Context, ticketID string) (TicketView, error)
	ListActive(ctx context.Context, serviceID string) ([]models.Ticket, error)
	CheckIn(ctx context.Context, ticketID string, occurredAt time.Time) (models.Ticket, error)
	Advance(ctx context.Context, input AdvanceInput) (models.Ticket, error)
	Snooze(ctx context.Context, ticketID string, occurredAt time.Time) error
	Analytics(ctx context.Context, from, to time.Time) (AnalyticsReport, error)
	CreateService(ctx context.Context, input ServiceInput) (models.Service, error)
	UpdateService(ctx context.Context, serviceID string, input ServiceInput) (models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, serviceID string) (models.Service, error)
	ListOutboxEvents(ctx context.Context, after time.Time, limit int) ([]OutboxEvent, error)
}
