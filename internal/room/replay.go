package room

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/record"
	"github.com/tenishevR/tic-tac-toe-web/internal/replay"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository"
	"github.com/tenishevR/tic-tac-toe-web/pkg/proto"
)

// RecordFetcher loads one stored game.
type RecordFetcher interface {
	FetchByID(ctx context.Context, id int64) (*record.GameRecord, error)
}

// ServeReplay streams record id to the client as paced replay_step messages followed
// by replay_done. The replay stops early when the client disconnects, starts another
// replay or starts a game.
func (r *Room) ServeReplay(ctx context.Context, records RecordFetcher, driver *replay.Driver, id int64) error {
	ctx, span := tracer.Start(ctx, "room.ServeReplay", trace.WithAttributes(
		attribute.String("client.id", r.ClientID),
		attribute.Int64("record.id", id),
	))
	defer span.End()
	defer r.conn.Close()

	replayCtx, release, err := r.hub.BeginReplay(ctx, r.ClientID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer release()

	replayCtx, cancel := context.WithCancel(replayCtx)
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := r.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	rec, err := records.FetchByID(replayCtx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not load record")
		if errors.Is(err, repository.ErrRecordNotFound) {
			r.sendError(ctx, "record not found")
		} else {
			slog.ErrorContext(ctx, "Could not load record for replay", "record.id", id, "error", err)
			r.sendError(ctx, "internal error")
		}
		return err
	}

	err = driver.Play(replayCtx, rec, func(f replay.Frame) error {
		return r.Send(ctx, &proto.ServerToClientMessage{Type: proto.TypeReplayStep, RecordID: id, Frame: &f})
	})
	switch {
	case errors.Is(err, replay.ErrCorruptRecord):
		r.sendError(ctx, "record unavailable")
		return err
	case errors.Is(err, context.Canceled):
		slog.InfoContext(ctx, "Replay cancelled", "client.id", r.ClientID, "record.id", id)
		_ = r.Send(ctx, &proto.ServerToClientMessage{Type: proto.TypeReplayDone, RecordID: id, Reason: "cancelled"})
		return nil
	case err != nil:
		span.RecordError(err)
		return err
	}

	return r.Send(ctx, &proto.ServerToClientMessage{Type: proto.TypeReplayDone, RecordID: id})
}
