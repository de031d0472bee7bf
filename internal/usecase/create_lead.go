package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/metrics"
)

type CreateLeadUseCase struct {
	Repo       entity.LeadRepositoryInterface
	Dispatcher ResearchDispatcher
	Logger     *zap.Logger
}

func NewCreateLeadUseCase(repo entity.LeadRepositoryInterface, dispatcher ResearchDispatcher, logger *zap.Logger) *CreateLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateLeadUseCase{
		Repo:       repo,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

// Execute persists a lead owned by the caller and queues its research.
// The returned lead is always in status new: research lands later.
func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*CreateLeadOutput, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if validationErrors := ValidateCreateLeadInput(input); len(validationErrors) > 0 {
		return nil, newValidationError(validationErrors)
	}

	lead, err := entity.NewLead(userID, input.CompanyName)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	lead.ContactName = strings.TrimSpace(input.ContactName)
	lead.ContactEmail = strings.TrimSpace(input.ContactEmail)
	lead.ContactPhone = strings.TrimSpace(input.ContactPhone)
	lead.Industry = strings.TrimSpace(input.Industry)
	lead.Notes = strings.TrimSpace(input.Notes)
	if website := strings.TrimSpace(input.Website); website != "" {
		lead.Website, _ = normalizeWebsite(website)
	}

	if err := uc.Repo.Insert(ctx, lead); err != nil {
		if auth.IsAuthError(err) {
			return nil, err
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to persist lead", Err: err}
	}
	metrics.RecordLeadCreated()

	log := uc.Logger.With(zap.String("lead_id", lead.ID), zap.String("company", lead.CompanyName))
	log.Info("lead created")

	queued := true
	if uc.Dispatcher == nil {
		queued = false
		log.Warn("no research dispatcher configured, lead stays in new")
	} else if err := uc.Dispatcher.Dispatch(ctx, entity.ResearchTask{
		LeadID:      lead.ID,
		UserID:      userID,
		CompanyName: lead.CompanyName,
	}); err != nil {
		queued = false
		metrics.RecordResearchDispatchError()
		log.Error("lead saved but research dispatch failed", zap.Error(err))
	}

	return &CreateLeadOutput{Lead: *lead, ResearchQueued: queued}, nil
}
