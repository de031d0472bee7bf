package entity

import (
	"context"
	"time"
)

const (
	ActivityEmail = "email"
	ActivityCall  = "call"
)

// OutreachActivity is append-only; it only feeds aggregate counters.
type OutreachActivity struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"lead_id"`
	ActivityType string    `json:"activity_type"` // email, call, ...
	CreatedAt    time.Time `json:"created_at"`
}

type ActivityRepositoryInterface interface {
	ListActivities(ctx context.Context) ([]OutreachActivity, error)
}
