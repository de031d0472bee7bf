package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type Stats struct {
	TotalLeads     int `json:"totalLeads"`
	EmailsSent     int `json:"emailsSent"`
	CallsMade      int `json:"callsMade"`
	MeetingsBooked int `json:"meetingsBooked"`
	AvgScore       int `json:"avgScore"`
}

// ComputeStats derives dashboard counters from full snapshots. AvgScore is
// the mean lead score rounded half up, 0 when there are no leads.
func ComputeStats(leads []entity.Lead, activities []entity.OutreachActivity, meetings []entity.Meeting) Stats {
	stats := Stats{TotalLeads: len(leads)}

	for _, a := range activities {
		switch a.ActivityType {
		case entity.ActivityEmail:
			stats.EmailsSent++
		case entity.ActivityCall:
			stats.CallsMade++
		}
	}

	for _, m := range meetings {
		if m.Status == entity.MeetingScheduled {
			stats.MeetingsBooked++
		}
	}

	if len(leads) > 0 {
		sum := 0
		for _, l := range leads {
			sum += l.Score
		}
		n := len(leads)
		// scores are non-negative, so integer half-up rounding is exact
		stats.AvgScore = (2*sum + n) / (2 * n)
	}

	return stats
}

type GetStatsUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Activities entity.ActivityRepositoryInterface
	Meetings   entity.MeetingRepositoryInterface
}

func NewGetStatsUseCase(leads entity.LeadRepositoryInterface, activities entity.ActivityRepositoryInterface, meetings entity.MeetingRepositoryInterface) *GetStatsUseCase {
	return &GetStatsUseCase{Leads: leads, Activities: activities, Meetings: meetings}
}

// Execute recomputes from scratch on every call; nothing is cached.
func (uc *GetStatsUseCase) Execute(ctx context.Context) (Stats, error) {
	leads, err := uc.Leads.List(ctx, entity.OrderCreatedDesc)
	if err != nil {
		return Stats{}, storeError(err, "failed to load leads")
	}
	activities, err := uc.Activities.ListActivities(ctx)
	if err != nil {
		return Stats{}, storeError(err, "failed to load activities")
	}
	meetings, err := uc.Meetings.ListMeetings(ctx, entity.MeetingFilter{})
	if err != nil {
		return Stats{}, storeError(err, "failed to load meetings")
	}

	return ComputeStats(leads, activities, meetings), nil
}

const (
	DefaultUpcomingLimit = 5
	maxUpcomingLimit     = 50
)

type ListUpcomingMeetingsUseCase struct {
	Meetings entity.MeetingRepositoryInterface
	Now      func() time.Time
}

func NewListUpcomingMeetingsUseCase(meetings entity.MeetingRepositoryInterface) *ListUpcomingMeetingsUseCase {
	return &ListUpcomingMeetingsUseCase{Meetings: meetings, Now: time.Now}
}

// Execute lists scheduled meetings from now on, soonest first.
func (uc *ListUpcomingMeetingsUseCase) Execute(ctx context.Context, limit int) ([]entity.Meeting, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}

	meetings, err := uc.Meetings.ListMeetings(ctx, entity.MeetingFilter{
		Status:    entity.MeetingScheduled,
		From:      uc.Now().UTC(),
		Limit:     limit,
		Ascending: true,
	})
	if err != nil {
		return nil, storeError(err, "failed to load meetings")
	}
	return meetings, nil
}
