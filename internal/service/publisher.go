// Package service holds the collaborators handlers lean on beyond storage:
// booking event publishing, seat-selection sessions and itinerary rendering.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/flight-seat-booking/internal/logger"
	q "github.com/iliyamo/flight-seat-booking/internal/queue"
)

// Publisher publishes booking events to RabbitMQ. Each publish dials its own
// connection, declares the target queue and sends one persistent message.
// Errors are logged and returned so the caller can choose to ignore them.
type Publisher struct {
	url string
	log *logger.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *logger.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// PublishBookingConfirmed publishes to the booking.confirmed queue.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error {
	return p.publish(ctx, q.BookingConfirmedQueue, event)
}

// PublishBookingCancelled publishes to the booking.cancelled queue.
func (p *Publisher) PublishBookingCancelled(ctx context.Context, event q.BookingCancelledEvent) error {
	return p.publish(ctx, q.BookingCancelledQueue, event)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("rabbitmq: marshal event failed", "queue", queue, "err", err)
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", "queue", queue, "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", "queue", queue, "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", "queue", queue, "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", "queue", queue, "err", err)
		return err
	}
	return nil
}
