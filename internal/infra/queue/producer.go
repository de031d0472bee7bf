package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishResearch(ctx context.Context, task entity.ResearchTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode research task: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    time.Now().UTC(),
			Type:         "research.requested",
		},
	)
	if err != nil {
		return fmt.Errorf("publish research task for lead %s: %w", task.LeadID, err)
	}

	return nil
}

// Dispatch lets the producer serve as the lead creation dispatcher.
func (p *RabbitMQProducer) Dispatch(ctx context.Context, task entity.ResearchTask) error {
	return p.PublishResearch(ctx, task)
}
