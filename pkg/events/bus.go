// Package events carries catalog domain events over a PostgreSQL-backed
// Watermill transport.
//
// Producers write events inside the same transaction as the rows they
// describe (PublishInTx), so a rolled-back create never emits an event.
// Consumers share one consumer group per service name, so each message is
// handled by a single worker instance. Handlers must be idempotent: a failing
// handler is retried with exponential backoff and then Nacked.
//
// OTel trace context travels in message metadata in both directions.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "catalog_forwarder_queue"
	errBuffer       = 100
)

// Mode selects how published messages reach their topic.
type Mode int

const (
	// Direct writes messages straight to the topic table.
	Direct Mode = iota
	// Forwarded writes messages to an internal queue that a forwarder daemon
	// relays to the target topic. Start it with StartForwarder.
	Forwarded
)

var (
	ErrForwarderDisabled = errors.New("events: forwarder not enabled on this bus")
	ErrForwarderRunning  = errors.New("events: forwarder already started")
)

// EventBus publishes and consumes catalog events through Watermill's SQL
// transport (FOR UPDATE SKIP LOCKED delivery).
type EventBus struct {
	db         *sql.DB
	log        logger.Logger
	mode       Mode
	consumer   string
	publisher  message.Publisher
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	wg         sync.WaitGroup
}

// NewEventBus opens its own connection to cfg.DatabaseURL and prepares a
// publisher and a subscriber. Schema tables are created on first use.
func NewEventBus(cfg *config.Config, log logger.Logger, mode Mode) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	bus := &EventBus{
		db:       db,
		log:      log,
		mode:     mode,
		consumer: cfg.ServiceName + "-consumer",
	}

	pub, err := bus.sqlPublisher(db, true)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	bus.publisher = bus.wrap(pub)

	sub, err := bus.sqlSubscriber(bus.consumer)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, err
	}
	bus.subscriber = sub

	return bus, nil
}

func (q *EventBus) sqlPublisher(db watermillsql.ContextExecutor, initSchema bool) (*watermillsql.Publisher, error) {
	pub, err := watermillsql.NewPublisher(
		db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: initSchema,
		},
		&slogAdapter{log: q.log},
	)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	return pub, nil
}

func (q *EventBus) sqlSubscriber(group string) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(
		q.db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    group,
		},
		&slogAdapter{log: q.log},
	)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber %s: %w", group, err)
	}
	return sub, nil
}

// wrap envelopes pub for the forwarder queue when the bus runs Forwarded.
func (q *EventBus) wrap(pub message.Publisher) message.Publisher {
	if q.mode != Forwarded {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder runs the forwarder daemon until ctx is cancelled. It returns
// once the daemon's router is running.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if q.mode != Forwarded {
		return ErrForwarderDisabled
	}
	if q.fwd != nil {
		return ErrForwarderRunning
	}

	fwdSub, err := q.sqlSubscriber("catalog-forwarder")
	if err != nil {
		return err
	}
	target, err := q.sqlPublisher(q.db, true)
	if err != nil {
		_ = fwdSub.Close()
		return err
	}

	fwd, err := forwarder.NewForwarder(fwdSub, target, &slogAdapter{log: q.log}, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = target.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
		}
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// Ping checks the bus's database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and the forwarder, waits for in-flight handlers
// (bounded by shutdownTimeout), then closes the publisher and the connection.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return q.db.Close()
}
