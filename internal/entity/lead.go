package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead not found")

type Lead struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	CompanyName   string          `json:"company_name"`
	ContactName   string          `json:"contact_name,omitempty"`
	ContactEmail  string          `json:"contact_email,omitempty"`
	ContactPhone  string          `json:"contact_phone,omitempty"`
	Website       string          `json:"website,omitempty"`
	Industry      string          `json:"industry,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Score         int             `json:"score"`
	Status        Status          `json:"status"` // new, researching, contacted, replied, meeting_booked, hot_lead
	Research      *ResearchResult `json:"research,omitempty"`
	ResearchError string          `json:"research_error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewLead builds a lead in its initial state: status new, score 0.
func NewLead(userID, companyName string) (*Lead, error) {
	lead := &Lead{
		ID:          uuid.New().String(),
		UserID:      userID,
		CompanyName: strings.TrimSpace(companyName),
		Score:       0,
		Status:      StatusNew,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.CompanyName) == "" {
		return errors.New("company_name is required")
	}
	if l.UserID == "" {
		return errors.New("user_id is required")
	}
	if l.Score < 0 {
		return errors.New("score must not be negative")
	}
	return nil
}

// LeadPatch carries the fields an update writes. Nil fields are left untouched.
type LeadPatch struct {
	Status        *Status
	Score         *int
	Research      *ResearchResult
	ResearchError *string
}

func (p LeadPatch) IsEmpty() bool {
	return p.Status == nil && p.Score == nil && p.Research == nil && p.ResearchError == nil
}

type LeadOrder string

const (
	OrderCreatedDesc LeadOrder = "created_desc"
	OrderCreatedAsc  LeadOrder = "created_asc"
	OrderScoreDesc   LeadOrder = "score_desc"
)

// LeadRepositoryInterface is scoped to the identity carried by ctx.
type LeadRepositoryInterface interface {
	Insert(ctx context.Context, lead *Lead) error
	List(ctx context.Context, order LeadOrder) ([]Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	Update(ctx context.Context, id string, patch LeadPatch) (*Lead, error)
}
