package entity

// ResearchResult is the AI-derived insight attached to a lead.
type ResearchResult struct {
	Overview       string   `json:"overview"`
	PainPoints     []string `json:"painPoints"`
	DecisionMakers []string `json:"decisionMakers"`
	RecentNews     string   `json:"recentNews"`
	OutreachAngle  string   `json:"outreachAngle"`
}

// Normalize replaces nil lists with empty ones so the payload always
// encodes "painPoints": [] rather than null.
func (r *ResearchResult) Normalize() {
	if r.PainPoints == nil {
		r.PainPoints = []string{}
	}
	if r.DecisionMakers == nil {
		r.DecisionMakers = []string{}
	}
}

// Merge returns a copy of r with every non-empty field of incoming applied on top.
func (r *ResearchResult) Merge(incoming ResearchResult) ResearchResult {
	var merged ResearchResult
	if r != nil {
		merged = *r
	}

	if incoming.Overview != "" {
		merged.Overview = incoming.Overview
	}
	if len(incoming.PainPoints) > 0 {
		merged.PainPoints = append([]string(nil), incoming.PainPoints...)
	}
	if len(incoming.DecisionMakers) > 0 {
		merged.DecisionMakers = append([]string(nil), incoming.DecisionMakers...)
	}
	if incoming.RecentNews != "" {
		merged.RecentNews = incoming.RecentNews
	}
	if incoming.OutreachAngle != "" {
		merged.OutreachAngle = incoming.OutreachAngle
	}

	merged.Normalize()
	return merged
}

// ResearchTask asks for research on a freshly created lead. It travels
// through the task queue, so it carries everything the consumer needs
// without reading the lead back.
type ResearchTask struct {
	LeadID      string `json:"lead_id"`
	UserID      string `json:"user_id"`
	CompanyName string `json:"company_name"`
	Attempt     int    `json:"attempt,omitempty"`
}
