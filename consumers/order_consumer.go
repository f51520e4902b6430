package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"commerce-service/config"
	"commerce-service/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Inbound event types sent by the payment and fulfillment collaborators.
const (
	EventPaymentConfirmed     = "payment_confirmed"
	EventFulfillmentConfirmed = "fulfillment_confirmed"
	EventCanceled             = "canceled"
)

var eventTransitions = map[string]models.OrderTransition{
	EventPaymentConfirmed:     models.TransitionPay,
	EventFulfillmentConfirmed: models.TransitionDeliver,
	EventCanceled:             models.TransitionCancel,
}

type PaymentMessage struct {
	OrderID int64  `json:"order_id"`
	Type    string `json:"type"`
}

// TransitionApplier advances an order without a caller identity.
type TransitionApplier interface {
	ApplyTransition(ctx context.Context, orderID int64, t models.OrderTransition) (*models.Order, error)
}

type OrderConsumer struct {
	ch     *amqp.Channel
	cfg    *config.Config
	orders TransitionApplier
	log    *logrus.Logger
}

func NewOrderConsumer(ch *amqp.Channel, cfg *config.Config, orders TransitionApplier, logger *logrus.Logger) *OrderConsumer {
	return &OrderConsumer{ch: ch, cfg: cfg, orders: orders, log: logger}
}

// Run consumes the payment and dead letter queues until ctx is done or the
// broker closes the deliveries.
func (c *OrderConsumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(
		c.cfg.PaymentQueue,
		"commerce-service", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register payment consumer: %w", err)
	}

	dlqMsgs, err := c.ch.Consume(c.cfg.DeadLetterQueue, "commerce-service-dlq", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register dead letter consumer: %w", err)
	}

	c.log.Infof("Consumer: listening on %s", c.cfg.PaymentQueue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("payment deliveries closed")
			}
			c.handleMessage(ctx, msg)
		case msg, ok := <-dlqMsgs:
			if !ok {
				return errors.New("dead letter deliveries closed")
			}
			c.handleDeadLetter(msg)
		}
	}
}

func (c *OrderConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorf("Consumer: recovered from panic in message processing: %v", r)
			c.nack(msg, false)
		}
	}()

	var m PaymentMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil || m.OrderID <= 0 {
		c.log.Warnf("Consumer: invalid message format: %s", msg.Body)
		c.nack(msg, false)
		return
	}
	t, ok := eventTransitions[m.Type]
	if !ok {
		c.log.Warnf("Consumer: unknown event type %q for order %d", m.Type, m.OrderID)
		c.nack(msg, false)
		return
	}

	c.log.Infof("Consumer: processing %s for order %d", m.Type, m.OrderID)
	if _, err := c.orders.ApplyTransition(ctx, m.OrderID, t); err != nil {
		// Missing orders and illegal edges never succeed on redelivery.
		permanent := errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidTransition)
		c.log.Warnf("Consumer: %s for order %d failed: %v", m.Type, m.OrderID, err)
		c.nack(msg, !permanent && !msg.Redelivered)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.log.Errorf("Consumer: ack failed: %v", err)
	}
}

func (c *OrderConsumer) handleDeadLetter(msg amqp.Delivery) {
	c.log.WithField("reason", deathReason(msg)).Errorf("Consumer: dead letter: %s", msg.Body)
	if err := msg.Ack(false); err != nil {
		c.log.Errorf("Consumer: ack of dead letter failed: %v", err)
	}
}

func (c *OrderConsumer) nack(msg amqp.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		c.log.Errorf("Consumer: nack failed: %v", err)
	}
}

func deathReason(msg amqp.Delivery) string {
	deaths, ok := msg.Headers["x-death"].([]interface{})
	if !ok || len(deaths) == 0 {
		return "unknown"
	}
	if table, ok := deaths[0].(amqp.Table); ok {
		if reason, ok := table["reason"].(string); ok {
			return reason
		}
	}
	return "unknown"
}
