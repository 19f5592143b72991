package amqpintake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fllarpy/room-analytics/config"
	"github.com/fllarpy/room-analytics/domain/events"
	"github.com/fllarpy/room-analytics/internal/application/intake"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// EventHandler is satisfied by *intake.Service.
type EventHandler interface {
	Handle(ctx context.Context, evt events.AnalyticsEvent) (intake.Result, error)
}

// ErrDeliveriesClosed is returned by Run when the broker closes the
// delivery channel before ctx is done.
var ErrDeliveriesClosed = errors.New("amqp deliveries channel closed")

type Consumer struct {
	cfg     config.AMQPConfig
	handler EventHandler
}

func NewConsumer(cfg config.AMQPConfig, handler EventHandler) *Consumer {
	return &Consumer{cfg: cfg, handler: handler}
}

// Run connects, declares the topology and consumes until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	conn, ch, err := connect(c.cfg.URL)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer ch.Close()

	if err := declare(ch, c.cfg); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %q: %w", c.cfg.Queue, err)
	}
	log.Printf("AMQP: consuming queue %q bound to %q with key %q", c.cfg.Queue, c.cfg.Exchange, c.cfg.RoutingKey)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func connect(url string) (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}

	return conn, ch, nil
}

func declare(ch *amqp091.Channel, cfg config.AMQPConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", cfg.Exchange, err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", cfg.Queue, err)
	}
	if err := ch.QueueBind(cfg.Queue, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %q: %w", cfg.Queue, err)
	}
	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp091.Delivery) {
	if len(d.Body) > events.MaxPayloadBytes {
		log.Printf("AMQP: delivery %d exceeds %d bytes, discarded", d.DeliveryTag, events.MaxPayloadBytes)
		settle(d.Nack(false, false))
		return
	}

	evt, err := events.Decode(bytes.NewReader(d.Body))
	if err != nil {
		log.Printf("AMQP: delivery %d is not a valid event, discarded: %v", d.DeliveryTag, err)
		settle(d.Nack(false, false))
		return
	}

	if _, err := c.handler.Handle(ctx, evt); err != nil {
		log.Printf("AMQP: delivery %d failed, requeued: %v", d.DeliveryTag, err)
		settle(d.Nack(false, true))
		return
	}

	settle(d.Ack(false))
}

func settle(err error) {
	if err != nil {
		log.Printf("AMQP: failed to settle delivery: %v", err)
	}
}
