package usecase

import (
	"context"
	"errors"
	"strings"
)

// missingCredentials is implemented by research errors that come from
// configuration rather than the remote service.
type missingCredentials interface {
	MissingCredentials() bool
}

// ResearchLeadUseCase researches a company synchronously without touching
// any lead. It backs the POST /research-lead trigger.
type ResearchLeadUseCase struct {
	Research ResearchService
}

func NewResearchLeadUseCase(research ResearchService) *ResearchLeadUseCase {
	return &ResearchLeadUseCase{Research: research}
}

func (uc *ResearchLeadUseCase) Execute(ctx context.Context, input ResearchLeadInput) (*ResearchLeadOutput, error) {
	name := strings.TrimSpace(input.CompanyName)
	if name == "" {
		return nil, newValidationError([]ValidationError{{Field: "companyName", Message: "is required"}})
	}

	result, err := uc.Research.Research(ctx, name)
	if err != nil {
		var mc missingCredentials
		if errors.As(err, &mc) && mc.MissingCredentials() {
			return nil, &TechnicalError{Code: CodeMissingCred, Message: "research service is not configured", Err: err}
		}
		return nil, &DomainError{Code: CodeResearch, Message: err.Error()}
	}

	result.Normalize()
	return &ResearchLeadOutput{Success: true, Research: result}, nil
}

// IsResearchError reports whether err is a failed call to the research service.
func IsResearchError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == CodeResearch
}
