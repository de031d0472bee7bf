package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ChangeChannel is the NOTIFY channel written by the leads trigger.
const ChangeChannel = "lead_changes"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id                UUID PRIMARY KEY,
		user_id           TEXT NOT NULL,
		company_name      TEXT NOT NULL CHECK (btrim(company_name) <> ''),
		contact_name      TEXT,
		contact_email     TEXT,
		contact_phone     TEXT,
		website           TEXT,
		industry          TEXT,
		notes             TEXT,
		score             INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
		status            TEXT NOT NULL DEFAULT 'new',
		research          JSONB,
		research_error    TEXT,
		research_attempts INTEGER NOT NULL DEFAULT 0,
		research_dispatched_at TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE leads ADD COLUMN IF NOT EXISTS research_dispatched_at TIMESTAMPTZ`,
	`CREATE INDEX IF NOT EXISTS idx_leads_user_created ON leads (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_unresearched ON leads (updated_at) WHERE status = 'new' AND research IS NULL`,
	`CREATE TABLE IF NOT EXISTS outreach_activities (
		id            UUID PRIMARY KEY,
		lead_id       UUID NOT NULL REFERENCES leads (id),
		user_id       TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id               UUID PRIMARY KEY,
		lead_id          UUID NOT NULL REFERENCES leads (id),
		user_id          TEXT NOT NULL,
		title            TEXT NOT NULL,
		scheduled_at     TIMESTAMPTZ NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 30,
		status           TEXT NOT NULL DEFAULT 'scheduled'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_user_scheduled ON meetings (user_id, scheduled_at)`,
	`CREATE OR REPLACE FUNCTION notify_lead_change() RETURNS trigger AS $$
	DECLARE
		rec RECORD;
	BEGIN
		IF TG_OP = 'DELETE' THEN
			rec := OLD;
		ELSE
			rec := NEW;
		END IF;
		PERFORM pg_notify('` + ChangeChannel + `', json_build_object('op', TG_OP, 'id', rec.id, 'user_id', rec.user_id)::text);
		RETURN rec;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS leads_notify_change ON leads`,
	`CREATE TRIGGER leads_notify_change
		AFTER INSERT OR UPDATE OR DELETE ON leads
		FOR EACH ROW EXECUTE FUNCTION notify_lead_change()`,
}

// Migrate applies the schema in one transaction. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}
