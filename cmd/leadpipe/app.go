package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/config"
	"github.com/xavierca1/lead-pipeline/internal/infra/database"
	"github.com/xavierca1/lead-pipeline/internal/infra/integration/aigateway"
	"github.com/xavierca1/lead-pipeline/internal/infra/mail"
	"github.com/xavierca1/lead-pipeline/internal/logging"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

// app holds what serve and worker both need: the pool, the repositories
// and the research pipeline that turns a task into a stored result.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *sql.DB
	leads    *database.LeadRepository
	research *aigateway.Client
	process  *usecase.ProcessResearchUseCase
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDBConnection(ctx, cfg.Database.URL, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 1. Repositories
	leads := database.NewLeadRepository(db)

	// 2. Research client
	research := aigateway.NewClient(aigateway.Config{
		URL:        cfg.AI.URL,
		Model:      cfg.AI.Model,
		APIKey:     cfg.AI.APIKey,
		Timeout:    cfg.AI.Timeout,
		MaxRetries: cfg.AI.MaxRetries,
	}, logger)
	if !research.Configured() {
		logger.Warn("AI gateway key is not set; research requests will fail")
	}

	// 3. Digest mail, optional
	var notifier usecase.ResearchNotifier
	if cfg.Mail.Host != "" {
		notifier = mail.NewResearchNotifier(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
		}, logger)
	}

	apply := usecase.NewApplyResearchUseCase(leads, notifier, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		leads:    leads,
		research: research,
		process:  usecase.NewProcessResearchUseCase(research, apply, logger),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
	a.logger.Sync()
}
