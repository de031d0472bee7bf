package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type UpdateLeadUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Policy TransitionPolicy
	Logger *zap.Logger
}

func NewUpdateLeadUseCase(repo entity.LeadRepositoryInterface, policy TransitionPolicy, logger *zap.Logger) *UpdateLeadUseCase {
	if policy == nil {
		policy = PermissivePolicy{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateLeadUseCase{Repo: repo, Policy: policy, Logger: logger}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, leadID string, input UpdateLeadInput) (*entity.Lead, error) {
	if _, err := auth.RequireUser(ctx); err != nil {
		return nil, err
	}

	if validationErrors := ValidateUpdateLeadInput(input); len(validationErrors) > 0 {
		return nil, newValidationError(validationErrors)
	}

	var patch entity.LeadPatch
	if input.Score != nil {
		score := *input.Score
		patch.Score = &score
	}

	if input.Status != nil {
		to := statusFromInput(*input.Status)

		current, err := uc.Repo.FindByID(ctx, leadID)
		if err != nil {
			return nil, storeError(err, "failed to load lead")
		}
		if err := uc.Policy.Allow(current.Status, to); err != nil {
			return nil, newValidationError([]ValidationError{{Field: "status", Message: err.Error()}})
		}
		patch.Status = &to
	}

	updated, err := uc.Repo.Update(ctx, leadID, patch)
	if err != nil {
		return nil, storeError(err, "failed to update lead")
	}

	uc.Logger.Info("lead updated",
		zap.String("lead_id", leadID),
		zap.String("status", updated.Status.String()),
		zap.Int("score", updated.Score),
	)
	return updated, nil
}

type ListLeadsUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewListLeadsUseCase(repo entity.LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Repo: repo}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, order entity.LeadOrder) ([]entity.Lead, error) {
	switch order {
	case "":
		order = entity.OrderCreatedDesc
	case entity.OrderCreatedDesc, entity.OrderCreatedAsc, entity.OrderScoreDesc:
	default:
		return nil, newValidationError([]ValidationError{{Field: "order", Message: "must be created_desc, created_asc or score_desc"}})
	}

	leads, err := uc.Repo.List(ctx, order)
	if err != nil {
		return nil, storeError(err, "failed to list leads")
	}
	return leads, nil
}
