package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

const TypeGameRecorded = "game_recorded"

var tracer = otel.Tracer("events")

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameRecordedPayload is the payload for the "game_recorded" event.
type GameRecordedPayload struct {
	RecordID   int64           `json:"record_id"`
	SessionID  string          `json:"session_id"`
	ClientID   string          `json:"client_id"`
	PlayerName string          `json:"player_name"`
	Winner     game.PlayerMark `json:"winner"`
	Size       int             `json:"size"`
	Date       time.Time       `json:"date"`
}

// Publisher announces domain events to other processes.
type Publisher interface {
	PublishGameRecorded(ctx context.Context, payload *GameRecordedPayload) error
}

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher publishes events on EventsChannel.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) PublishGameRecorded(ctx context.Context, payload *GameRecordedPayload) error {
	ctx, span := tracer.Start(ctx, "events.PublishGameRecorded", trace.WithAttributes(
		attribute.String("event.channel", EventsChannel),
		attribute.Int64("record.id", payload.RecordID),
	))
	defer span.End()

	event, err := Encode(TypeGameRecorded, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode event")
		return err
	}

	if err := p.rdb.Publish(ctx, EventsChannel, event).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("failed to publish %s event: %w", TypeGameRecorded, err)
	}
	return nil
}

// Encode wraps payload in an Event envelope.
func Encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	event, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return event, nil
}

type nopPublisher struct{}

// NewNopPublisher is used when no Redis is configured; it only logs.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishGameRecorded(ctx context.Context, payload *GameRecordedPayload) error {
	slog.DebugContext(ctx, "Event publishing disabled", "event.type", TypeGameRecorded, "record.id", payload.RecordID)
	return nil
}
