package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type ApplyResearchUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Notifier ResearchNotifier
	Logger   *zap.Logger
}

func NewApplyResearchUseCase(repo entity.LeadRepositoryInterface, notifier ResearchNotifier, logger *zap.Logger) *ApplyResearchUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplyResearchUseCase{Repo: repo, Notifier: notifier, Logger: logger}
}

// Execute merges result into the lead's research payload and clears any
// earlier failure marker. Status moves to researching only from new or
// researching; a lead the user already advanced keeps its status.
func (uc *ApplyResearchUseCase) Execute(ctx context.Context, leadID string, result entity.ResearchResult) (*entity.Lead, error) {
	if _, err := auth.RequireUser(ctx); err != nil {
		return nil, err
	}

	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, storeError(err, "failed to load lead")
	}

	merged := lead.Research.Merge(result)
	cleared := ""
	patch := entity.LeadPatch{
		Research:      &merged,
		ResearchError: &cleared,
	}
	if lead.Status == entity.StatusNew || lead.Status == entity.StatusResearching {
		researching := entity.StatusResearching
		patch.Status = &researching
	}

	updated, err := uc.Repo.Update(ctx, leadID, patch)
	if err != nil {
		return nil, storeError(err, "failed to apply research")
	}

	uc.Logger.Info("research applied",
		zap.String("lead_id", leadID),
		zap.String("status", updated.Status.String()),
	)

	if uc.Notifier != nil {
		if err := uc.Notifier.NotifyResearchReady(ctx, updated); err != nil {
			uc.Logger.Warn("research notification failed", zap.String("lead_id", leadID), zap.Error(err))
		}
	}

	return updated, nil
}

// MarkFailed records cause on the lead so the failure is visible. The
// status is left as it is.
func (uc *ApplyResearchUseCase) MarkFailed(ctx context.Context, leadID string, cause error) error {
	if _, err := auth.RequireUser(ctx); err != nil {
		return err
	}

	msg := "research failed"
	if cause != nil {
		msg = cause.Error()
	}
	if _, err := uc.Repo.Update(ctx, leadID, entity.LeadPatch{ResearchError: &msg}); err != nil {
		return storeError(err, "failed to record research failure")
	}
	return nil
}

// storeError passes identity and not-found errors through and wraps the rest.
func storeError(err error, msg string) error {
	if auth.IsAuthError(err) || errors.Is(err, entity.ErrLeadNotFound) {
		return err
	}
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}
