package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name       string
		leads      []entity.Lead
		activities []entity.OutreachActivity
		meetings   []entity.Meeting
		want       Stats
	}{
		{
			name: "empty input",
			want: Stats{},
		},
		{
			name:       "two leads one email one meeting",
			leads:      []entity.Lead{{Score: 10}, {Score: 20}},
			activities: []entity.OutreachActivity{{ActivityType: entity.ActivityEmail}},
			meetings:   []entity.Meeting{{Status: entity.MeetingScheduled}},
			want:       Stats{TotalLeads: 2, EmailsSent: 1, CallsMade: 0, MeetingsBooked: 1, AvgScore: 15},
		},
		{
			name:  "average rounds half up",
			leads: []entity.Lead{{Score: 1}, {Score: 2}},
			want:  Stats{TotalLeads: 2, AvgScore: 2},
		},
		{
			name:  "average rounds down below half",
			leads: []entity.Lead{{Score: 1}, {Score: 1}, {Score: 2}},
			want:  Stats{TotalLeads: 3, AvgScore: 1},
		},
		{
			name: "other activity and meeting states are ignored",
			activities: []entity.OutreachActivity{
				{ActivityType: entity.ActivityCall},
				{ActivityType: entity.ActivityCall},
				{ActivityType: "linkedin"},
			},
			meetings: []entity.Meeting{{Status: "cancelled"}, {Status: "completed"}},
			want:     Stats{CallsMade: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.leads, tt.activities, tt.meetings))
		})
	}
}

func TestGetStats_RecomputesFromRepositories(t *testing.T) {
	leads := new(MockLeadRepository)
	activities := new(MockActivityRepository)
	meetings := new(MockMeetingRepository)
	uc := NewGetStatsUseCase(leads, activities, meetings)

	leads.On("List", mock.Anything, entity.OrderCreatedDesc).Return([]entity.Lead{{Score: 10}, {Score: 20}}, nil)
	activities.On("ListActivities", mock.Anything).Return([]entity.OutreachActivity{{ActivityType: "email"}}, nil)
	meetings.On("ListMeetings", mock.Anything, entity.MeetingFilter{}).Return([]entity.Meeting{{Status: "scheduled"}}, nil)

	stats, err := uc.Execute(userCtx())

	require.NoError(t, err)
	assert.Equal(t, Stats{TotalLeads: 2, EmailsSent: 1, MeetingsBooked: 1, AvgScore: 15}, stats)
}

func TestGetStats_StoreFailure(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewGetStatsUseCase(leads, new(MockActivityRepository), new(MockMeetingRepository))

	leads.On("List", mock.Anything, entity.OrderCreatedDesc).Return(nil, errors.New("timeout"))

	_, err := uc.Execute(userCtx())

	assert.True(t, IsTechnicalError(err))
}

func TestListUpcomingMeetings(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	meetings := new(MockMeetingRepository)
	uc := NewListUpcomingMeetingsUseCase(meetings)
	uc.Now = func() time.Time { return now }

	want := entity.MeetingFilter{Status: "scheduled", From: now, Limit: DefaultUpcomingLimit, Ascending: true}
	meetings.On("ListMeetings", mock.Anything, want).Return([]entity.Meeting{{ID: "m1"}}, nil)

	got, err := uc.Execute(userCtx(), 0)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	meetings.AssertExpectations(t)
}

func TestListUpcomingMeetings_CapsLimit(t *testing.T) {
	meetings := new(MockMeetingRepository)
	uc := NewListUpcomingMeetingsUseCase(meetings)

	meetings.On("ListMeetings", mock.Anything, mock.MatchedBy(func(f entity.MeetingFilter) bool {
		return f.Limit == maxUpcomingLimit
	})).Return([]entity.Meeting{}, nil)

	_, err := uc.Execute(userCtx(), 1000)

	require.NoError(t, err)
	meetings.AssertExpectations(t)
}
