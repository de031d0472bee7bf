package usecase

import (
	"context"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// ResearchDispatcher hands a research task off to whatever runs it.
// Dispatch must not wait for the research itself.
type ResearchDispatcher interface {
	Dispatch(ctx context.Context, task entity.ResearchTask) error
}

type ResearchService interface {
	Research(ctx context.Context, companyName string) (entity.ResearchResult, error)
}

type ResearchNotifier interface {
	NotifyResearchReady(ctx context.Context, lead *entity.Lead) error
}
