package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/iho/growbucks/internal/domain"
)

// amqpChannel is the subset of *amqp091.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes outbox events to a durable topic exchange, routed by event type.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  amqpChannel
	exchange string
	declared bool
	reopen   func() (amqpChannel, error)
}

// NewAMQPPublisher dials the broker and opens a channel.
func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	p := newAMQPPublisher(ch, exchange)
	p.conn = conn
	p.reopen = func() (amqpChannel, error) { return conn.Channel() }

	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{channel: ch, exchange: exchange}
}

// Publish sends one event. A failed publish reopens the channel and tries once more.
func (p *AMQPPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	msg, err := toPublishing(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publishLocked(ctx, event.EventType, msg)
	if err == nil || p.reopen == nil {
		return err
	}

	ch, chErr := p.reopen()
	if chErr != nil {
		return errors.Join(err, chErr)
	}
	p.channel = ch
	p.declared = false

	return p.publishLocked(ctx, event.EventType, msg)
}

func (p *AMQPPublisher) publishLocked(ctx context.Context, routingKey string, msg amqp091.Publishing) error {
	if !p.declared {
		if err := p.channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
		}
		p.declared = true
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func toPublishing(event *domain.OutboxEvent) (amqp091.Publishing, error) {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal event payload: %w", err)
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID,
		Type:         event.EventType,
		Timestamp:    event.CreatedAt,
		Headers: amqp091.Table{
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
		},
		Body: body,
	}, nil
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")

	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}

	return clean, nil
}
