package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/record"
)

const DefaultInterval = 500 * time.Millisecond

var ErrCorruptRecord = errors.New("corrupt game record")

var tracer = otel.Tracer("replay")

// Frame is the board right after one replayed move.
type Frame struct {
	MoveNumber int           `json:"moveNumber"`
	Move       game.Move     `json:"move"`
	Board      game.Snapshot `json:"board"`
}

// Driver replays stored games. Interval paces Play; Replay ignores it.
type Driver struct {
	Interval time.Duration
}

// NewDriver creates a driver pacing frames by interval.
func NewDriver(interval time.Duration) *Driver {
	return &Driver{Interval: interval}
}

// Replay rebuilds rec on a fresh game and returns one frame per move.
// The moves go through the engine one at a time, so every move is checked for turn
// order and emptiness, and the win check runs after each of them. A record whose moves
// do not end the game exactly on the last move with rec.Winner is ErrCorruptRecord.
func (d *Driver) Replay(rec *record.GameRecord) ([]Frame, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrCorruptRecord)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: record %d: %v", ErrCorruptRecord, rec.ID, err)
	}

	g, err := game.NewGame(rec.Size, rec.HumanSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: record %d: %v", ErrCorruptRecord, rec.ID, err)
	}

	frames := make([]Frame, 0, len(rec.Moves))
	for _, m := range rec.Moves {
		if err := g.Move(m.Row, m.Col, m.Player); err != nil {
			return nil, fmt.Errorf("%w: record %d move %d: %v", ErrCorruptRecord, rec.ID, m.MoveNumber, err)
		}
		frames = append(frames, Frame{
			MoveNumber: m.MoveNumber,
			Move:       m,
			Board:      g.Board(),
		})
	}

	if !g.IsFinished() {
		return nil, fmt.Errorf("%w: record %d: game unfinished after %d moves", ErrCorruptRecord, rec.ID, len(rec.Moves))
	}
	if g.Winner() != rec.Winner {
		return nil, fmt.Errorf("%w: record %d: moves give winner %q, record says %q", ErrCorruptRecord, rec.ID, g.Winner(), rec.Winner)
	}
	if rec.Winner == game.None && (g.HasFullLine(game.PlayerX) || g.HasFullLine(game.PlayerO)) {
		return nil, fmt.Errorf("%w: record %d: draw board contains a full line", ErrCorruptRecord, rec.ID)
	}

	return frames, nil
}

// Play validates rec and then emits its frames one Interval apart. Nothing is emitted
// for a corrupt record. It stops with ctx.Err() when ctx is cancelled and with the
// emit error if emit fails.
func (d *Driver) Play(ctx context.Context, rec *record.GameRecord, emit func(Frame) error) error {
	ctx, span := tracer.Start(ctx, "replay.Play", trace.WithAttributes(
		attribute.Int64("record.id", recordID(rec)),
	))
	defer span.End()

	frames, err := d.Replay(rec)
	if err != nil {
		slog.WarnContext(ctx, "replay aborted, record unavailable", "record.id", recordID(rec), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Corrupt record")
		return err
	}

	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, f := range frames {
		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
		if err := ctx.Err(); err != nil {
			span.SetAttributes(attribute.Int("replay.frames_sent", f.MoveNumber-1))
			return err
		}
		if err := emit(f); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Emit failed")
			return err
		}
	}

	span.SetAttributes(attribute.Int("replay.frames_sent", len(frames)))
	return nil
}

func recordID(rec *record.GameRecord) int64 {
	if rec == nil {
		return 0
	}
	return rec.ID
}
