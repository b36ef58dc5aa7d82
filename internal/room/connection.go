package room

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/hub"
	"github.com/tenishevR/tic-tac-toe-web/pkg/proto"
)

// Send writes message to the client. Failures are logged and returned.
func (r *Room) Send(ctx context.Context, message *proto.ServerToClientMessage) error {
	_, span := tracer.Start(ctx, "room.Send", trace.WithAttributes(
		attribute.String("client.id", r.ClientID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return err
	}

	if err := r.write(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to client", "client.id", r.ClientID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error writing message to client")
		return err
	}
	return nil
}

func (r *Room) sendView(ctx context.Context, v hub.View) {
	_ = r.Send(ctx, &proto.ServerToClientMessage{Type: proto.TypeUpdate, Game: &v})
}

func (r *Room) sendError(ctx context.Context, reason string) {
	_ = r.Send(ctx, &proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason})
}

// ReadPump reads client messages until the connection fails, handling each in turn.
func (r *Room) ReadPump(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.ReadPump", trace.WithAttributes(
		attribute.String("client.id", r.ClientID),
	))
	defer span.End()

	defer func() {
		r.conn.Close()
		slog.InfoContext(ctx, "Client disconnected", "client.id", r.ClientID)
	}()

	for {
		_, msg, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Client connection error", "client.id", r.ClientID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Client connection error")
			}
			return
		}
		r.HandleMessage(ctx, msg)
	}
}
