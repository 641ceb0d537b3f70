package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/flight-seat-booking/internal/logger"
)

// Consumer listens to the booking queues and appends one line per event to
// a log file.
type Consumer struct {
	url     string
	logPath string
	log     *logger.Logger

	mu sync.Mutex // serialises writes to logPath
}

// NewConsumer returns a consumer for the broker at url writing to logPath.
func NewConsumer(url, logPath string, log *logger.Logger) *Consumer {
	return &Consumer{url: url, logPath: logPath, log: log}
}

// Run connects to RabbitMQ, declares both booking queues (durable) and
// consumes until ctx is cancelled. Lost connections are re-dialled with
// exponential backoff capped at 30s. Messages that cannot be handled are
// rejected without requeue so a poison message cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking-consumer: dial failed", "err", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking-consumer: consume loop ended; reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking-consumer: set QoS failed", "err", err)
	}

	confirmed, err := declareAndConsume(ch, BookingConfirmedQueue)
	if err != nil {
		return err
	}
	cancelled, err := declareAndConsume(ch, BookingCancelledQueue)
	if err != nil {
		return err
	}

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-confirmed:
		case d, ok = <-cancelled:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.Handle(d.RoutingKey, d.Body); err != nil {
			c.log.Warn("booking-consumer: handle message failed", "queue", d.RoutingKey, "err", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

func declareAndConsume(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

// Handle decodes a message from queue and appends its log line.
func (c *Consumer) Handle(queue string, body []byte) error {
	line, err := FormatLine(queue, body)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders the single-line log entry for an event body.
func FormatLine(queue string, body []byte) (string, error) {
	switch queue {
	case BookingConfirmedQueue:
		var ev BookingConfirmedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | ref=%s | user_id=%s | flight=%s (%s->%s) | departs=%s | total=%.2f | payment_ref=%s | seats=%s\n",
			ev.ConfirmedAt, ev.BookingID, ev.BookingRef, ev.UserID, ev.FlightNumber, ev.Origin, ev.Destination,
			ev.DepartureTime, ev.TotalPrice, ev.PaymentRef, seatList(ev.Seats)), nil
	case BookingCancelledQueue:
		var ev BookingCancelledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking cancelled | booking_id=%d | ref=%s | user_id=%s | flight_id=%d | refunded=%t | seats=%s\n",
			ev.CancelledAt, ev.BookingID, ev.BookingRef, ev.UserID, ev.FlightID, ev.Refunded, seatList(ev.Seats)), nil
	default:
		return "", fmt.Errorf("unknown queue %q", queue)
	}
}

func seatList(seats []string) string {
	return "[" + strings.Join(seats, ",") + "]"
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
