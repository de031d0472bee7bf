package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

func TestApplyResearch_StatusTransitions(t *testing.T) {
	tests := []struct {
		name       string
		current    entity.Status
		wantStatus *entity.Status
	}{
		{name: "new moves to researching", current: entity.StatusNew, wantStatus: statusPtr(entity.StatusResearching)},
		{name: "researching stays researching", current: entity.StatusResearching, wantStatus: statusPtr(entity.StatusResearching)},
		{name: "contacted is untouched", current: entity.StatusContacted, wantStatus: nil},
		{name: "hot lead is untouched", current: entity.StatusHotLead, wantStatus: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLeadRepository)
			uc := NewApplyResearchUseCase(repo, nil, zaptest.NewLogger(t))

			repo.On("FindByID", mock.Anything, "lead-1").
				Return(&entity.Lead{ID: "lead-1", Status: tt.current}, nil)

			var got entity.LeadPatch
			repo.On("Update", mock.Anything, "lead-1", mock.Anything).
				Run(func(args mock.Arguments) { got = args.Get(2).(entity.LeadPatch) }).
				Return(&entity.Lead{ID: "lead-1", Status: tt.current}, nil)

			_, err := uc.Execute(userCtx(), "lead-1", entity.ResearchResult{Overview: "fresh"})

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			require.NotNil(t, got.Research)
			assert.Equal(t, "fresh", got.Research.Overview)
			require.NotNil(t, got.ResearchError)
			assert.Empty(t, *got.ResearchError)
		})
	}
}

func TestApplyResearch_MergeKeepsExistingFields(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewApplyResearchUseCase(repo, nil, nil)

	existing := &entity.ResearchResult{
		Overview:      "old overview",
		PainPoints:    []string{"churn"},
		OutreachAngle: "old angle",
	}
	repo.On("FindByID", mock.Anything, "lead-1").
		Return(&entity.Lead{ID: "lead-1", Status: entity.StatusResearching, Research: existing}, nil)
	repo.On("Update", mock.Anything, "lead-1", mock.MatchedBy(func(p entity.LeadPatch) bool {
		return p.Research != nil &&
			p.Research.Overview == "new overview" &&
			assert.ObjectsAreEqual([]string{"churn"}, p.Research.PainPoints) &&
			p.Research.OutreachAngle == "old angle" &&
			p.Research.DecisionMakers != nil
	})).Return(&entity.Lead{ID: "lead-1"}, nil)

	_, err := uc.Execute(userCtx(), "lead-1", entity.ResearchResult{Overview: "new overview"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestApplyResearch_NotifiesAndIgnoresNotifierFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := new(MockNotifier)
	uc := NewApplyResearchUseCase(repo, notifier, zaptest.NewLogger(t))

	updated := &entity.Lead{ID: "lead-1", Status: entity.StatusResearching}
	repo.On("FindByID", mock.Anything, "lead-1").Return(&entity.Lead{ID: "lead-1", Status: entity.StatusNew}, nil)
	repo.On("Update", mock.Anything, "lead-1", mock.Anything).Return(updated, nil)
	notifier.On("NotifyResearchReady", mock.Anything, updated).Return(errors.New("smtp down"))

	lead, err := uc.Execute(userCtx(), "lead-1", entity.ResearchResult{Overview: "x"})

	require.NoError(t, err)
	assert.Equal(t, updated, lead)
	notifier.AssertExpectations(t)
}

func TestApplyResearch_LeadNotFound(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewApplyResearchUseCase(repo, nil, nil)

	repo.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrLeadNotFound)

	_, err := uc.Execute(userCtx(), "missing", entity.ResearchResult{})

	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyResearch_RequiresIdentity(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewApplyResearchUseCase(repo, nil, nil)

	_, err := uc.Execute(context.Background(), "lead-1", entity.ResearchResult{})

	assert.True(t, auth.IsAuthError(err))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMarkFailed_SetsMarkerOnly(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewApplyResearchUseCase(repo, nil, nil)

	repo.On("Update", mock.Anything, "lead-1", mock.MatchedBy(func(p entity.LeadPatch) bool {
		return p.Status == nil && p.Research == nil && p.Score == nil &&
			p.ResearchError != nil && *p.ResearchError == "AI gateway error: 500 - boom"
	})).Return(&entity.Lead{ID: "lead-1"}, nil)

	err := uc.MarkFailed(userCtx(), "lead-1", errors.New("AI gateway error: 500 - boom"))

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProcessResearch_Success(t *testing.T) {
	repo := new(MockLeadRepository)
	research := new(MockResearchService)
	uc := NewProcessResearchUseCase(research, NewApplyResearchUseCase(repo, nil, nil), zaptest.NewLogger(t))

	research.On("Research", mock.MatchedBy(func(ctx context.Context) bool {
		owner, ok := auth.UserFromContext(ctx)
		return ok && owner == "user-1"
	}), "Acme Corp").Return(entity.ResearchResult{Overview: "rockets"}, nil)
	repo.On("FindByID", mock.Anything, "lead-1").Return(&entity.Lead{ID: "lead-1", Status: entity.StatusNew}, nil)
	repo.On("Update", mock.Anything, "lead-1", mock.Anything).
		Return(&entity.Lead{ID: "lead-1", Status: entity.StatusResearching}, nil)

	err := uc.Process(context.Background(), entity.ResearchTask{LeadID: "lead-1", UserID: "user-1", CompanyName: "Acme Corp"})

	require.NoError(t, err)
	research.AssertExpectations(t)
	repo.AssertExpectations(t)
}

// TestProcessResearch_FailureLeavesLeadNewAndMarked - failure isolation:
// the lead stays in new with a visible marker and the error is returned.
func TestProcessResearch_FailureLeavesLeadNewAndMarked(t *testing.T) {
	repo := new(MockLeadRepository)
	research := new(MockResearchService)
	uc := NewProcessResearchUseCase(research, NewApplyResearchUseCase(repo, nil, nil), zaptest.NewLogger(t))

	svcErr := errors.New("AI gateway error: 503 - unavailable")
	research.On("Research", mock.Anything, "Acme Corp").Return(entity.ResearchResult{}, svcErr)
	repo.On("Update", mock.Anything, "lead-1", mock.MatchedBy(func(p entity.LeadPatch) bool {
		return p.Status == nil && p.ResearchError != nil
	})).Return(&entity.Lead{ID: "lead-1", Status: entity.StatusNew}, nil)

	err := uc.Process(context.Background(), entity.ResearchTask{LeadID: "lead-1", UserID: "user-1", CompanyName: "Acme Corp"})

	assert.ErrorIs(t, err, svcErr)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProcessResearch_RejectsIncompleteTask(t *testing.T) {
	research := new(MockResearchService)
	uc := NewProcessResearchUseCase(research, NewApplyResearchUseCase(new(MockLeadRepository), nil, nil), nil)

	err := uc.Process(context.Background(), entity.ResearchTask{LeadID: "lead-1", CompanyName: "Acme"})

	assert.True(t, IsValidationError(err))
	research.AssertNotCalled(t, "Research", mock.Anything, mock.Anything)
}

func statusPtr(s entity.Status) *entity.Status {
	return &s
}
