package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"waitline/internal/hub"
	"waitline/internal/store"
)

// EventSource is the slice of the ticket store the worker needs: the
// committed outbox feed.
type EventSource interface {
	ListOutboxEvents(ctx context.Context, after time.Time, limit int) ([]store.OutboxEvent, error)
}

// Provider delivers a personal notification to one customer contact.
type Provider interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogProvider is the default delivery channel: it only logs. Real
// deployments plug an SMTP or SMS provider in its place.
type LogProvider struct{}

func (LogProvider) Send(ctx context.Context, recipient, subject, body string) error {
	log.Printf("notify recipient=%s subject=%q body=%q", recipient, subject, body)
	return nil
}

type Worker struct {
	source    EventSource
	hub       *hub.Hub
	provider  Provider
	batchSize int
	last      time.Time
}

type Config struct {
	BatchSize int
}

type envelope struct {
	Type      string    `json:"type"`
	ServiceID string    `json:"service_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ticketFields struct {
	TokenNumber int    `json:"token_number"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func New(source EventSource, h *hub.Hub, provider Provider, cfg Config) *Worker {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	if provider == nil {
		provider = LogProvider{}
	}
	return &Worker{
		source:    source,
		hub:       h,
		provider:  provider,
		batchSize: batch,
		last:      time.Now().UTC(),
	}
}

// Run drains one batch of outbox events: each becomes a queue-changed
// broadcast, and serving events with contact info additionally get a
// personal "your turn" delivery. Failures are logged and never
// propagate back into the engine.
func (w *Worker) Run(ctx context.Context) error {
	events, err := w.source.ListOutboxEvents(ctx, w.last, w.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		w.broadcast(event)
		if event.Type == "ticket.serving" {
			w.notifyCustomer(ctx, event)
		}
		w.last = event.CreatedAt
	}
	return nil
}

func (w *Worker) broadcast(event store.OutboxEvent) {
	payload, err := json.Marshal(envelope{
		Type:      event.Type,
		ServiceID: event.ServiceID,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		log.Printf("notify marshal error: %v", err)
		return
	}
	w.hub.Broadcast(payload, hub.Subscription{ServiceID: event.ServiceID})
}

func (w *Worker) notifyCustomer(ctx context.Context, event store.OutboxEvent) {
	var fields ticketFields
	if err := json.Unmarshal(event.Payload, &fields); err != nil {
		log.Printf("notify payload error: %v", err)
		return
	}
	recipient := fields.Email
	if recipient == "" {
		recipient = fields.Phone
	}
	if recipient == "" {
		return
	}

	subject := fmt.Sprintf("Token %d: it's your turn", fields.TokenNumber)
	body := fmt.Sprintf("Token %d is now being served. Please proceed to the counter.", fields.TokenNumber)
	if err := w.provider.Send(ctx, recipient, subject, body); err != nil {
		log.Printf("notify send error: %v", err)
	}
}
