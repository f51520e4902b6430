package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"commerce-service/config"
	"commerce-service/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	PriorityHigh   uint8 = 9
	PriorityNormal uint8 = 5

	highValueTotal = 1000.0
)

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Cfg     *config.Config
	log     *logrus.Logger
}

func NewRabbitMQ(cfg *config.Config, logger *logrus.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Warnf("RabbitMQ: close after channel failure: %v", cerr)
		}
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &RabbitMQ{
		Conn:    conn,
		Channel: ch,
		Cfg:     cfg,
		log:     logger,
	}, nil
}

func deadLetterExchange(cfg *config.Config) string {
	return cfg.DeadLetterQueue + "_exchange"
}

// SetupQueues declares the order event topology and the inbound payment
// queue. Both work queues dead-letter into the same queue.
func (r *RabbitMQ) SetupQueues() error {
	dlx := deadLetterExchange(r.Cfg)

	if err := r.Channel.ExchangeDeclare(dlx, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", dlx, err)
	}
	if _, err := r.Channel.QueueDeclare(
		r.Cfg.DeadLetterQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-queue-type": "classic"},
	); err != nil {
		return fmt.Errorf("declare %s: %w", r.Cfg.DeadLetterQueue, err)
	}
	if err := r.Channel.QueueBind(r.Cfg.DeadLetterQueue, r.Cfg.DeadLetterQueue, dlx, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", r.Cfg.DeadLetterQueue, err)
	}

	if err := r.Channel.ExchangeDeclare(r.Cfg.OrderExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", r.Cfg.OrderExchange, err)
	}

	for _, queue := range []string{r.Cfg.OrderQueue, r.Cfg.PaymentQueue} {
		if _, err := r.Channel.QueueDeclare(queue, true, false, false, false, r.workQueueArgs()); err != nil {
			return fmt.Errorf("declare %s: %w", queue, err)
		}
	}
	if err := r.Channel.QueueBind(r.Cfg.OrderQueue, "", r.Cfg.OrderExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", r.Cfg.OrderQueue, err)
	}
	return nil
}

func (r *RabbitMQ) workQueueArgs() amqp.Table {
	return amqp.Table{
		"x-max-priority":            r.Cfg.MaxPriority,
		"x-dead-letter-exchange":    deadLetterExchange(r.Cfg),
		"x-dead-letter-routing-key": r.Cfg.DeadLetterQueue,
	}
}

// EventPriority ranks high value and canceled orders ahead of the rest.
func EventPriority(e models.OrderEvent) uint8 {
	if e.Total > highValueTotal || e.Status == models.StatusCanceled {
		return PriorityHigh
	}
	return PriorityNormal
}

func newPublishing(e models.OrderEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Type:         e.Type,
		Body:         body,
		Priority:     EventPriority(e),
	}, nil
}

func (r *RabbitMQ) PublishOrderEvent(ctx context.Context, e models.OrderEvent) error {
	msg, err := newPublishing(e)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	if err := r.Channel.PublishWithContext(
		ctx,
		r.Cfg.OrderExchange,
		"",
		false, // mandatory
		false, // immediate
		msg,
	); err != nil {
		return fmt.Errorf("publish order %d %s: %w", e.OrderID, e.Type, err)
	}
	r.log.Debugf("RabbitMQ: published %s for order %d with priority %d", e.Type, e.OrderID, msg.Priority)
	return nil
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			r.log.Warnf("RabbitMQ: close channel: %v", err)
		}
	}
	if r.Conn != nil {
		if err := r.Conn.Close(); err != nil {
			r.log.Warnf("RabbitMQ: close connection: %v", err)
		}
	}
}
