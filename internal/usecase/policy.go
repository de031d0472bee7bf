package usecase

import (
	"fmt"
	"strings"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// TransitionPolicy decides whether a lead may move from one status to another.
type TransitionPolicy interface {
	Allow(from, to entity.Status) error
}

// PermissivePolicy accepts any transition, including labels outside the pipeline.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to entity.Status) error {
	return nil
}

// StrictPolicy only accepts known labels moving forward along the pipeline.
// Writing the current status again is allowed.
type StrictPolicy struct{}

func (StrictPolicy) Allow(from, to entity.Status) error {
	if !to.Known() {
		return fmt.Errorf("unknown status %q", to)
	}
	if from == to {
		return nil
	}
	if from.Known() && to.Rank() < from.Rank() {
		return fmt.Errorf("cannot move from %s back to %s", from, to)
	}
	return nil
}

// PolicyByName maps the lead.status_policy setting to a policy.
func PolicyByName(name string) (TransitionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "permissive":
		return PermissivePolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown status policy %q", name)
	}
}
