package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/logger"
)

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

type created struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		failUntil int
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", 0, false, 1},
		{"succeeds on last attempt", 2, false, 3},
		{"exhausted", 99, true, maxRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			h := func(_ context.Context, _ *message.Message) error {
				calls++
				if calls <= tt.failUntil {
					return errors.New("transient")
				}
				return nil
			}
			err := retryWithBackoff(context.Background(), message.NewMessage("id", nil), h, maxRetries, time.Millisecond, nopLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	h := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("error")
	}
	err := retryWithBackoff(ctx, message.NewMessage("id", nil), h, maxRetries, time.Second, nopLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancel, got %d", calls)
	}
}

func TestStartForwarder_DirectMode(t *testing.T) {
	bus := &EventBus{mode: Direct}
	if err := bus.StartForwarder(context.Background()); !errors.Is(err, ErrForwarderDisabled) {
		t.Fatalf("expected ErrForwarderDisabled, got %v", err)
	}
}

func TestNewMessage_Metadata(t *testing.T) {
	msg, err := NewMessage(context.Background(), "evt-1", 2, created{ID: "a", Name: "Shoes"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.UUID != "evt-1" {
		t.Errorf("uuid = %q", msg.UUID)
	}
	if got := msg.Metadata.Get(MetaEventID); got != "evt-1" {
		t.Errorf("event_id = %q", got)
	}
	if got := msg.Metadata.Get(MetaEventVersion); got != "2" {
		t.Errorf("event_version = %q", got)
	}
}

func TestDecode(t *testing.T) {
	msg, err := NewMessage(context.Background(), "evt-1", 1, created{ID: "a", Name: "Shoes"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	var got created
	if err := Decode(msg, 1, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Name != "Shoes" {
		t.Errorf("name = %q", got.Name)
	}

	newer, _ := NewMessage(context.Background(), "evt-2", 3, created{})
	if err := Decode(newer, 1, &got); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}

	bad := message.NewMessage("evt-3", []byte("{"))
	if err := Decode(bad, 1, &got); err == nil {
		t.Error("expected decode error for malformed payload")
	}
}

func TestTracePropagation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "create-category")
	defer span.End()

	msg, err := NewMessage(ctx, "evt-1", 1, created{})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	got := trace.SpanFromContext(extractTrace(context.Background(), msg)).SpanContext()
	if !got.IsValid() {
		t.Fatal("extracted span context is not valid")
	}
	if got.TraceID() != span.SpanContext().TraceID() {
		t.Errorf("trace id mismatch: want %s, got %s", span.SpanContext().TraceID(), got.TraceID())
	}
}
