package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.leads"
	QueueName    = "q.research"
	DLQName      = "q.research.dlq"
	DLXName      = "ex.leads.dlx"
	RoutingKey   = "k.research"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// topologyDeclarer is the subset of *amqp.Channel used to declare topology.
type topologyDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

func NewRabbitMQ(url string, prefetch int) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}

	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set prefetch: %w", err)
		}
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() error {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}

// setupTopology declares the research queue and its dead-letter pair.
// A task that is Nacked without requeue lands in DLQName.
func setupTopology(ch topologyDeclarer) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil); err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}

	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return err
	}
	return ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil)
}
