package usecase

import "github.com/xavierca1/lead-pipeline/internal/entity"

type CreateLeadInput struct {
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Website      string `json:"website"`
	Industry     string `json:"industry"`
	Notes        string `json:"notes"`
}

type CreateLeadOutput struct {
	entity.Lead
	// ResearchQueued is false when the research task could not be handed off.
	ResearchQueued bool `json:"research_queued"`
}

// UpdateLeadInput is a partial update; nil fields are left untouched.
type UpdateLeadInput struct {
	Status *string `json:"status,omitempty"`
	Score  *int    `json:"score,omitempty"`
}

type ResearchLeadInput struct {
	CompanyName string `json:"companyName"`
}

type ResearchLeadOutput struct {
	Success  bool                  `json:"success"`
	Research entity.ResearchResult `json:"research"`
}
