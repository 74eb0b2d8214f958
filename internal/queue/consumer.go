package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// Consumer consumes sweep jobs from a RabbitMQ queue
type Consumer struct {
	conn      *Connection
	queueName string
	handler   SweepHandler
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// SweepHandler is a function that processes one sweep job
type SweepHandler func(job *SweepJob) error

// NewConsumer creates a new consumer instance
func NewConsumer(conn *Connection, queueName string, handler SweepHandler) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	// Declare queue (same settings as publisher: durable, non-auto-delete)
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

	return &Consumer{
		conn:      conn,
		queueName: queueName,
		handler:   handler,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}, nil
}

// Start starts consuming sweep jobs from the queue
func (c *Consumer) Start() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	// One sweep at a time: the tenant's gateway is rate-limited and a sweep
	// can fan out into many batches.
	err = ch.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (manual acknowledgement)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		defer close(c.doneChan)

		for {
			select {
			case <-c.stopChan:
				log.Println("Consumer stopping...")
				return
			case d, ok := <-msgs:
				if !ok {
					log.Println("Delivery channel closed")
					return
				}

				var job SweepJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					// A malformed job would loop forever if requeued; drop it
					log.Printf("Dropping malformed sweep job: %v", err)
					d.Nack(false, false)
					continue
				}

				if err := c.handler(&job); err != nil {
					log.Printf("Error processing sweep job for tenant %s: %v", job.TenantID, err)
					// Requeue for retry
					d.Nack(false, true)
				} else {
					d.Ack(false)
				}
			}
		}
	}()

	log.Printf("Consumer started, listening on queue: %s", c.queueName)
	return nil
}

// Stop stops consuming jobs gracefully
func (c *Consumer) Stop() error {
	close(c.stopChan)
	<-c.doneChan
	log.Println("Consumer stopped successfully")
	return nil
}
