package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// ResearchProcessor runs one research task to completion.
type ResearchProcessor interface {
	Process(ctx context.Context, task entity.ResearchTask) error
}

// Consumer is the subset of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

var ErrDeliveriesClosed = errors.New("delivery channel closed")

type Worker struct {
	Channel     Consumer
	Processor   ResearchProcessor
	Concurrency int
	logger      *zap.Logger
}

func NewWorker(ch Consumer, processor ResearchProcessor, concurrency int, logger *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		Channel:     ch,
		Processor:   processor,
		Concurrency: concurrency,
		logger:      logger.Named("research_worker"),
	}
}

// Start consumes queueName with manual acks until ctx is done, in which case
// it returns nil, or until the broker closes the delivery channel.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	tag := "leadpipe-" + uuid.New().String()
	msgs, err := w.Channel.Consume(queueName, tag, false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.logger.Info("worker consuming", zap.String("queue", queueName), zap.Int("concurrency", w.Concurrency))

	var (
		wg     sync.WaitGroup
		closed = make(chan struct{}, w.Concurrency)
	)
	for i := 0; i < w.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						closed <- struct{}{}
						return
					}
					// in-flight tasks finish on shutdown rather than being dead-lettered
					w.handle(context.WithoutCancel(ctx), d)
				}
			}
		}()
	}
	wg.Wait()

	select {
	case <-closed:
		if ctx.Err() == nil {
			return ErrDeliveriesClosed
		}
	default:
	}
	w.logger.Info("worker stopped", zap.String("queue", queueName))
	return nil
}

// handle acks processed tasks and dead-letters everything else.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var task entity.ResearchTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		w.logger.Error("malformed research task, dead-lettering", zap.String("message_id", d.MessageId), zap.Error(err))
		w.nack(d)
		return
	}

	log := w.logger.With(zap.String("lead_id", task.LeadID), zap.String("message_id", d.MessageId))
	log.Info("research task received")

	if err := w.Processor.Process(ctx, task); err != nil {
		log.Error("research task failed, dead-lettering", zap.Error(err))
		w.nack(d)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("ack failed", zap.Error(err))
		return
	}
	log.Info("research task done")
}

func (w *Worker) nack(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		w.logger.Error("nack failed", zap.Error(err))
	}
}
