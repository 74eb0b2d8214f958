package queue

import (
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SweepKind identifies which automation sweep a job asks for
type SweepKind string

const (
	SweepKindBirthday      SweepKind = "birthday"
	SweepKindEventReminder SweepKind = "event_reminder"
)

// SweepJob asks the worker to run one automation sweep for one tenant.
// Tenants are fully isolated, so every job is independently processable.
type SweepJob struct {
	TenantID string    `json:"tenant_id"`
	Kind     SweepKind `json:"kind"`
}

// Publisher publishes sweep jobs to RabbitMQ
type Publisher struct {
	conn      *Connection
	queueName string
}

// NewPublisher creates a new publisher instance
func NewPublisher(conn *Connection, queueName string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	// Declare queue (durable, non-auto-delete, non-exclusive)
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{
		conn:      conn,
		queueName: queueName,
	}, nil
}

// PublishSweep publishes one sweep job to the queue
func (p *Publisher) PublishSweep(tenantID string, kind SweepKind) error {
	if tenantID == "" {
		return errors.New("tenant id cannot be empty")
	}

	job := SweepJob{TenantID: tenantID, Kind: kind}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal sweep job: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	err = ch.Publish(
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish sweep job: %w", err)
	}

	return nil
}

// Close closes the publisher (no-op, connection managed externally)
func (p *Publisher) Close() error {
	return nil
}
