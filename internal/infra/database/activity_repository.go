package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/lead-pipeline/internal/auth"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// ActivityRepository is read-only: activities are appended elsewhere.
type ActivityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) ListActivities(ctx context.Context) ([]entity.OutreachActivity, error) {
	owner, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, lead_id, activity_type, created_at
		FROM outreach_activities
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, pqError("list activities", err)
	}
	defer rows.Close()

	activities := []entity.OutreachActivity{}
	for rows.Next() {
		var a entity.OutreachActivity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.ActivityType, &a.CreatedAt); err != nil {
			return nil, pqError("scan activity", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, pqError("list activities", err)
	}
	return activities, nil
}
