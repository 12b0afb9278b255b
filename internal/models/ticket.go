package models

import "time"

type Ticket struct {
	TicketID     string     `json:"ticket_id"`
	TokenNumber  int        `json:"token_number"`
	ServiceID    string     `json:"service_id"`
	Status       string     `json:"status"`
	CustomerName string     `json:"customer_name,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	RequestID    string     `json:"request_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ServedAt     *time.Time `json:"served_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

const (
	StatusArriving  = "arriving"
	StatusWaiting   = "waiting"
	StatusServing   = "serving"
	StatusCompleted = "completed"
)
