package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Metadata keys set on every catalog message.
const (
	MetaEventID      = "event_id"
	MetaEventVersion = "event_version"
)

var ErrUnsupportedVersion = errors.New("events: unsupported event version")

// NewMessage encodes payload as JSON and stamps the id, schema version and
// the trace context of ctx into the message metadata.
func NewMessage(ctx context.Context, eventID string, version int, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %T: %w", payload, err)
	}
	msg := message.NewMessage(eventID, data)
	msg.Metadata.Set(MetaEventID, eventID)
	msg.Metadata.Set(MetaEventVersion, strconv.Itoa(version))
	injectTrace(ctx, msg)
	return msg, nil
}

// Decode unmarshals msg into dst after checking that its schema version is
// at most maxVersion. Messages without a version are accepted.
func Decode(msg *message.Message, maxVersion int, dst any) error {
	if raw := msg.Metadata.Get(MetaEventVersion); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v > maxVersion {
			return fmt.Errorf("%w: %q", ErrUnsupportedVersion, raw)
		}
	}
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("events: decode %s: %w", msg.UUID, err)
	}
	return nil
}

// Publish sends msgs to topic outside of any transaction.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		injectTrace(ctx, msg)
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// PublishInTx writes msgs to topic inside tx. The messages become visible to
// subscribers only if tx commits.
func (q *EventBus) PublishInTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error {
	// tables exist once NewEventBus has run
	pub, err := q.sqlPublisher(tx, false)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		injectTrace(ctx, msg)
	}
	if err := q.wrap(pub).Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}

func injectTrace(ctx context.Context, msg *message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
