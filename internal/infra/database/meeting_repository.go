package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type MeetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{DB: db}
}

// ListMeetings returns the caller's meetings with the company name of
// their lead. Zero-valued filter fields are not applied.
func (r *MeetingRepository) ListMeetings(ctx context.Context, filter entity.MeetingFilter) ([]entity.Meeting, error) {
	owner, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	where := []string{"m.user_id = $1"}
	args := []any{owner}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("m.status = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("m.scheduled_at >= $%d", len(args)))
	}

	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	query := `
		SELECT m.id, m.lead_id, COALESCE(l.company_name, ''), m.title, m.scheduled_at, m.duration_minutes, m.status
		FROM meetings m
		LEFT JOIN leads l ON l.id = m.lead_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY m.scheduled_at ` + direction

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pqError("list meetings", err)
	}
	defer rows.Close()

	meetings := []entity.Meeting{}
	for rows.Next() {
		var m entity.Meeting
		if err := rows.Scan(&m.ID, &m.LeadID, &m.CompanyName, &m.Title, &m.ScheduledAt, &m.DurationMinutes, &m.Status); err != nil {
			return nil, pqError("scan meeting", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, pqError("list meetings", err)
	}
	return meetings, nil
}
