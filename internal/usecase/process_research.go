package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// ProcessResearchUseCase runs one ResearchTask end to end on behalf of the
// lead's owner. It is what queue consumers call.
type ProcessResearchUseCase struct {
	Research ResearchService
	Apply    *ApplyResearchUseCase
	Logger   *zap.Logger
}

func NewProcessResearchUseCase(research ResearchService, apply *ApplyResearchUseCase, logger *zap.Logger) *ProcessResearchUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessResearchUseCase{Research: research, Apply: apply, Logger: logger}
}

// Process returns the research error after recording it on the lead, so
// the caller can dead-letter the task.
func (uc *ProcessResearchUseCase) Process(ctx context.Context, task entity.ResearchTask) error {
	if task.LeadID == "" || strings.TrimSpace(task.UserID) == "" || strings.TrimSpace(task.CompanyName) == "" {
		return newValidationError([]ValidationError{{Field: "task", Message: "lead_id, user_id and company_name are required"}})
	}

	ctx = auth.WithUser(ctx, task.UserID)
	log := uc.Logger.With(zap.String("lead_id", task.LeadID), zap.String("company", task.CompanyName))

	result, err := uc.Research.Research(ctx, task.CompanyName)
	if err != nil {
		log.Error("research failed", zap.Error(err))
		if markErr := uc.Apply.MarkFailed(ctx, task.LeadID, err); markErr != nil {
			log.Error("could not record research failure", zap.Error(markErr))
		}
		return fmt.Errorf("research lead %s: %w", task.LeadID, err)
	}

	if _, err := uc.Apply.Execute(ctx, task.LeadID, result); err != nil {
		return fmt.Errorf("apply research to lead %s: %w", task.LeadID, err)
	}
	return nil
}
