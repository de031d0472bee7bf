package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume research tasks from RabbitMQ",
	Long: `worker consumes q.research with manual acknowledgement. Each task is
researched, merged into its lead and acked; failures are recorded on the lead
and dead-lettered to q.research.dlq.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if cfg.RabbitMQ.URL == "" {
			return errors.New("rabbitmq.url is required for the worker (LEADPIPE_RABBITMQ_URL)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Prefetch)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		w := queue.NewWorker(rabbitMQ.Ch, a.process, cfg.Research.Concurrency, a.logger)
		if err := w.Start(ctx, queue.QueueName); err != nil {
			a.logger.Error("worker stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
