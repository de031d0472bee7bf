package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

const leadColumns = `id, user_id, company_name, contact_name, contact_email, contact_phone,
	website, industry, notes, score, status, research, research_error, created_at, updated_at`

// id breaks ties so repeated reads return the same sequence.
var leadOrderClauses = map[entity.LeadOrder]string{
	entity.OrderCreatedDesc: "created_at DESC, id DESC",
	entity.OrderCreatedAsc:  "created_at ASC, id ASC",
	entity.OrderScoreDesc:   "score DESC, created_at DESC, id DESC",
}

// LeadRepository scopes every query to the identity carried by ctx.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	owner, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	if lead.UserID != owner {
		return &auth.AuthError{Reason: "lead owner does not match caller"}
	}

	query := `
		INSERT INTO leads (id, user_id, company_name, contact_name, contact_email, contact_phone,
			website, industry, notes, score, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.UserID,
		lead.CompanyName,
		nullString(lead.ContactName),
		nullString(lead.ContactEmail),
		nullString(lead.ContactPhone),
		nullString(lead.Website),
		nullString(lead.Industry),
		nullString(lead.Notes),
		lead.Score,
		string(lead.Status),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return pqError("insert lead", err)
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, order entity.LeadOrder) ([]entity.Lead, error) {
	owner, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	clause, ok := leadOrderClauses[order]
	if !ok {
		clause = leadOrderClauses[entity.OrderCreatedDesc]
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE user_id = $1 ORDER BY ` + clause

	rows, err := r.DB.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, pqError("list leads", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, pqError("list leads", err)
	}
	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	owner, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// Update writes the non-nil fields of patch and returns the stored row.
// Concurrent updates to the same lead are last-write-wins.
func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	owner, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Score != nil {
		set("score", *patch.Score)
	}
	if patch.Research != nil {
		research := *patch.Research
		research.Normalize()
		payload, err := json.Marshal(research)
		if err != nil {
			return nil, fmt.Errorf("encode research: %w", err)
		}
		// jsonb parameters go over the wire as text
		set("research", string(payload))
	}
	if patch.ResearchError != nil {
		set("research_error", nullString(*patch.ResearchError))
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id, owner)
	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d AND user_id = $%d RETURNING `+leadColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead                                  entity.Lead
		contactName, contactEmail, contactTel sql.NullString
		website, industry, notes, researchErr sql.NullString
		status                                string
		research                              []byte
	)

	err := row.Scan(
		&lead.ID,
		&lead.UserID,
		&lead.CompanyName,
		&contactName,
		&contactEmail,
		&contactTel,
		&website,
		&industry,
		&notes,
		&lead.Score,
		&status,
		&research,
		&researchErr,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, pqError("scan lead", err)
	}

	lead.ContactName = contactName.String
	lead.ContactEmail = contactEmail.String
	lead.ContactPhone = contactTel.String
	lead.Website = website.String
	lead.Industry = industry.String
	lead.Notes = notes.String
	lead.ResearchError = researchErr.String
	lead.Status = entity.Status(status)

	if len(research) > 0 {
		var result entity.ResearchResult
		if err := json.Unmarshal(research, &result); err != nil {
			return nil, fmt.Errorf("decode research for lead %s: %w", lead.ID, err)
		}
		result.Normalize()
		lead.Research = &result
	}

	return &lead, nil
}

// pqError wraps err with the Postgres condition name when there is one.
func pqError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %s (%s): %w", op, pqErr.Code.Name(), pqErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
