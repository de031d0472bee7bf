package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type credentialsErr struct{}

func (credentialsErr) Error() string            { return "API key not configured" }
func (credentialsErr) MissingCredentials() bool { return true }

func TestResearchLead_ReturnsNormalizedResearch(t *testing.T) {
	research := new(MockResearchService)
	uc := NewResearchLeadUseCase(research)

	research.On("Research", mock.Anything, "Acme Corp").Return(entity.ResearchResult{Overview: "rockets"}, nil)

	out, err := uc.Execute(context.Background(), ResearchLeadInput{CompanyName: " Acme Corp "})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "rockets", out.Research.Overview)
	assert.Equal(t, []string{}, out.Research.PainPoints)
}

func TestResearchLead_RequiresCompanyName(t *testing.T) {
	research := new(MockResearchService)
	uc := NewResearchLeadUseCase(research)

	_, err := uc.Execute(context.Background(), ResearchLeadInput{})

	assert.True(t, IsValidationError(err))
	research.AssertNotCalled(t, "Research", mock.Anything, mock.Anything)
}

func TestResearchLead_ServiceFailure(t *testing.T) {
	research := new(MockResearchService)
	uc := NewResearchLeadUseCase(research)

	research.On("Research", mock.Anything, "Acme").Return(entity.ResearchResult{}, errors.New("AI gateway error: 429 - slow down"))

	_, err := uc.Execute(context.Background(), ResearchLeadInput{CompanyName: "Acme"})

	assert.True(t, IsResearchError(err))
	assert.Contains(t, err.Error(), "429")
}

func TestResearchLead_MissingCredentials(t *testing.T) {
	research := new(MockResearchService)
	uc := NewResearchLeadUseCase(research)

	research.On("Research", mock.Anything, "Acme").Return(entity.ResearchResult{}, credentialsErr{})

	_, err := uc.Execute(context.Background(), ResearchLeadInput{CompanyName: "Acme"})

	assert.True(t, IsTechnicalError(err))
	assert.False(t, IsResearchError(err))
}
