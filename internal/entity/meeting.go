package entity

import (
	"context"
	"time"
)

const MeetingScheduled = "scheduled"

type Meeting struct {
	ID              string    `json:"id"`
	LeadID          string    `json:"lead_id"`
	CompanyName     string    `json:"company_name,omitempty"` // joined from leads
	Title           string    `json:"title"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"` // scheduled, ...
}

// MeetingFilter narrows ListMeetings. Zero values mean "no constraint".
type MeetingFilter struct {
	Status string
	From   time.Time
	Limit  int
	// Ascending orders by scheduled_at ASC; default is DESC.
	Ascending bool
}

type MeetingRepositoryInterface interface {
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
}
