package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, order entity.LeadOrder) ([]entity.Lead, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

// MockActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) ListActivities(ctx context.Context) ([]entity.OutreachActivity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.OutreachActivity), args.Error(1)
}

// MockMeetingRepository
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) ListMeetings(ctx context.Context, filter entity.MeetingFilter) ([]entity.Meeting, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Meeting), args.Error(1)
}

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, task entity.ResearchTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// MockResearchService
type MockResearchService struct {
	mock.Mock
}

func (m *MockResearchService) Research(ctx context.Context, companyName string) (entity.ResearchResult, error) {
	args := m.Called(ctx, companyName)
	return args.Get(0).(entity.ResearchResult), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyResearchReady(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}
