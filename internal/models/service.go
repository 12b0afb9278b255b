package models

import "time"

type Service struct {
	ServiceID     string    `json:"service_id"`
	Name          string    `json:"name"`
	AvgMinutes    int       `json:"avg_minutes"`
	Icon          string    `json:"icon,omitempty"`
	NextServiceID *string   `json:"next_service_id,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}
