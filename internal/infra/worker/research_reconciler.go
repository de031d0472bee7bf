package worker

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// Dispatcher matches usecase.ResearchDispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, task entity.ResearchTask) error
}

type ReconcilerConfig struct {
	// StaleAfter is how long a lead may sit in new without research.
	StaleAfter   time.Duration
	TickInterval time.Duration
	MaxAttempts  int
	BatchSize    int
}

func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		StaleAfter:   10 * time.Minute,
		TickInterval: time.Minute,
		MaxAttempts:  3,
		BatchSize:    50,
	}
}

// ResearchReconciler re-dispatches research for leads left in new without
// a payload, which happens when a dispatch or the research itself failed.
// It works across owners, so it talks to the database directly.
type ResearchReconciler struct {
	db         *sql.DB
	dispatcher Dispatcher
	cfg        ReconcilerConfig
	logger     *zap.Logger
}

func NewResearchReconciler(db *sql.DB, dispatcher Dispatcher, cfg ReconcilerConfig, logger *zap.Logger) *ResearchReconciler {
	defaults := DefaultReconcilerConfig()
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaults.StaleAfter
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchReconciler{
		db:         db,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.Named("research_reconciler"),
	}
}

func (w *ResearchReconciler) Start(ctx context.Context) {
	w.logger.Info("research reconciler started",
		zap.Duration("stale_after", w.cfg.StaleAfter),
		zap.Int("max_attempts", w.cfg.MaxAttempts),
	)

	ticker := time.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()

	w.Reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("research reconciler stopped")
			return
		case <-ticker.C:
			w.Reconcile(ctx)
		}
	}
}

// Reconcile claims one batch of stale leads, bumping research_attempts so a
// lead is retried at most MaxAttempts times, and dispatches each. Claiming
// stamps research_dispatched_at, so a lead whose task is still queued is not
// stale again until StaleAfter has passed. It returns how many tasks were
// handed off.
func (w *ResearchReconciler) Reconcile(ctx context.Context) int {
	query := `
		UPDATE leads
		SET research_attempts = research_attempts + 1,
			research_dispatched_at = NOW()
		WHERE id IN (
			SELECT id FROM leads
			WHERE status = 'new'
				AND research IS NULL
				AND research_attempts < $1
				AND GREATEST(updated_at, research_dispatched_at) < NOW() - make_interval(secs => $2)
			ORDER BY updated_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, company_name, research_attempts
	`

	rows, err := w.db.QueryContext(ctx, query, w.cfg.MaxAttempts, w.cfg.StaleAfter.Seconds(), w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("failed to claim stale leads", zap.Error(err))
		return 0
	}

	var tasks []entity.ResearchTask
	for rows.Next() {
		var task entity.ResearchTask
		if err := rows.Scan(&task.LeadID, &task.UserID, &task.CompanyName, &task.Attempt); err != nil {
			w.logger.Warn("failed to scan stale lead", zap.Error(err))
			continue
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		w.logger.Error("failed to read stale leads", zap.Error(err))
	}
	rows.Close()

	dispatched := 0
	for _, task := range tasks {
		if err := w.dispatcher.Dispatch(ctx, task); err != nil {
			w.logger.Error("re-dispatch failed", zap.String("lead_id", task.LeadID), zap.Error(err))
			continue
		}
		w.logger.Info("research re-dispatched", zap.String("lead_id", task.LeadID), zap.Int("attempt", task.Attempt))
		dispatched++
	}

	return dispatched
}
