package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/infra/database"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/handlers"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
	"github.com/xavierca1/lead-pipeline/internal/infra/worker"
	"github.com/xavierca1/lead-pipeline/internal/notify"
	"github.com/xavierca1/lead-pipeline/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `serve exposes the lead API, the SSE change stream and /metrics.

Without rabbitmq.url, research runs in-process with bounded concurrency;
with it, tasks are published for "leadpipe worker" to consume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reconcile, _ := cmd.Flags().GetBool("reconcile")
		return serve(cmd.Context(), reconcile)
	},
}

func init() {
	serveCmd.Flags().Bool("reconcile", true, "periodically re-dispatch leads whose research never completed")
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context, reconcile bool) error {
	cfg := appConfig

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	// 1. Dispatcher: broker when configured, in-process otherwise
	var (
		dispatcher usecase.ResearchDispatcher
		brokerConn handlers.ConnState
	)
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Prefetch)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		dispatcher = queue.NewProducer(rabbitMQ.Ch)
		brokerConn = rabbitMQ.Conn
		logger.Info("research tasks go to RabbitMQ", zap.String("queue", queue.QueueName))
	} else {
		local := queue.NewLocalDispatcher(ctx, a.process, int64(cfg.Research.Concurrency), logger)
		defer local.Wait()

		dispatcher = local
		logger.Info("research tasks run in-process", zap.Int("concurrency", cfg.Research.Concurrency))
	}

	// 2. Change feed
	hub := notify.NewHub(notify.WithLogger(logger))
	defer hub.Close()

	listener := database.NewChangeListener(cfg.Database.URL, hub, logger)
	go func() {
		if err := listener.Run(ctx); err != nil {
			logger.Error("change listener stopped", zap.Error(err))
		}
	}()

	if reconcile {
		reconciler := worker.NewResearchReconciler(a.db, dispatcher, worker.ReconcilerConfig{
			StaleAfter:   cfg.Research.StaleAfter,
			TickInterval: cfg.Research.TickInterval,
			MaxAttempts:  cfg.Research.MaxAttempts,
			BatchSize:    cfg.Research.BatchSize,
		}, logger)
		go reconciler.Start(ctx)
	}

	// 3. Use cases
	policy, err := usecase.PolicyByName(cfg.Lead.StatusPolicy)
	if err != nil {
		return err
	}

	activities := database.NewActivityRepository(a.db)
	meetings := database.NewMeetingRepository(a.db)

	createLead := usecase.NewCreateLeadUseCase(a.leads, dispatcher, logger)
	listLeads := usecase.NewListLeadsUseCase(a.leads)
	updateLead := usecase.NewUpdateLeadUseCase(a.leads, policy, logger)
	researchLead := usecase.NewResearchLeadUseCase(a.research)
	getStats := usecase.NewGetStatsUseCase(a.leads, activities, meetings)
	upcoming := usecase.NewListUpcomingMeetingsUseCase(meetings)

	// 4. Handlers
	leadLimiter := handlers.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)
	defer leadLimiter.Close()
	researchLimiter := handlers.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)
	defer researchLimiter.Close()

	router := newRouter(routes{
		Leads:     handlers.NewLeadHandler(createLead, listLeads, updateLead, hub, leadLimiter, logger),
		Research:  handlers.NewResearchHandler(researchLead, researchLimiter, logger),
		Dashboard: handlers.NewDashboardHandler(getStats, upcoming, logger),
		Health:    handlers.NewHealthHandler(a.db, brokerConn, a.research, version),
	})

	// request contexts derive from ctx so open SSE streams end on shutdown
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
