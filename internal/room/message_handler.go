package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/hub"
	"github.com/tenishevR/tic-tac-toe-web/internal/validator"
	"github.com/tenishevR/tic-tac-toe-web/pkg/proto"
)

// HandleMessage handles a message from the client. It acts as a dispatcher.
// Successful requests are answered through the subscription; failures get an error message.
func (r *Room) HandleMessage(ctx context.Context, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("client.id", r.ClientID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, "malformed message")
		return
	}

	if err := validator.Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "client.id", r.ClientID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeStart:
		r.handleStart(ctx, &message)
	case proto.TypeMove:
		r.handleMove(ctx, &message)
	}
}

func (r *Room) handleStart(ctx context.Context, message *proto.ClientToServerMessage) {
	if message.Size == 0 {
		r.sendError(ctx, "size is required")
		return
	}
	name := message.PlayerName
	if name == "" {
		name = r.PlayerName
	}

	if _, err := r.hub.StartGame(ctx, r.ClientID, name, message.Size); err != nil {
		slog.WarnContext(ctx, "could not start game", "client.id", r.ClientID, "error", err)
		r.sendError(ctx, reasonFor(err))
	}
}

func (r *Room) handleMove(ctx context.Context, message *proto.ClientToServerMessage) {
	ctx, moveSpan := tracer.Start(ctx, "room.handleMove", trace.WithAttributes(
		attribute.String("client.id", r.ClientID),
	))
	defer moveSpan.End()

	if len(message.Position) != 2 {
		moveSpan.SetStatus(codes.Error, "Missing position")
		r.sendError(ctx, "position is required")
		return
	}
	row, col := message.Position[0], message.Position[1]
	moveSpan.SetAttributes(attribute.Int("move.row", row), attribute.Int("move.col", col))

	if _, err := r.hub.Move(ctx, r.ClientID, row, col); err != nil {
		moveSpan.SetAttributes(attribute.Bool("move.valid", false))
		moveSpan.RecordError(err)
		moveSpan.SetStatus(codes.Error, "Invalid move")
		r.sendError(ctx, reasonFor(err))
		return
	}
	moveSpan.SetAttributes(attribute.Bool("move.valid", true))
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, hub.ErrNoActiveGame):
		return "no active game"
	case errors.Is(err, game.ErrGameAlreadyFinished):
		return "game is already finished"
	case errors.Is(err, game.ErrOutOfBounds):
		return "cell is off the board"
	case errors.Is(err, game.ErrIllegalMove):
		return "illegal move"
	case errors.Is(err, game.ErrInvalidSize):
		return "board size must be between 3 and 10"
	default:
		return "internal error"
	}
}
