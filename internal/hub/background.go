package hub

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/events"
	"github.com/tenishevR/tic-tac-toe-web/internal/record"
)

// scheduleOpponent posts the opponent's turn back into the loop after delay.
func (h *Hub) scheduleOpponent(e *entry, delay time.Duration) {
	ref := e.ref()
	e.thinking = true
	e.timer = time.AfterFunc(delay, func() {
		select {
		case h.opponentTurn <- ref:
		case <-h.done:
		}
	})
}

// save stores rec outside the loop and reports the outcome back to it.
func (h *Hub) save(ctx context.Context, ref sessionRef, clientID string, rec *record.GameRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.saveTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "hub.saveRecord", trace.WithAttributes(
		attribute.String("client.id", clientID),
		attribute.String("session.id", ref.sessionID),
	))
	defer span.End()

	id, err := h.repo.Save(ctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to save game record", "session.id", ref.sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save game record")
	} else {
		span.SetAttributes(attribute.Int64("record.id", id))
		slog.InfoContext(ctx, "Game record saved", "session.id", ref.sessionID, "record.id", id)

		payload := &events.GameRecordedPayload{
			RecordID:   id,
			SessionID:  ref.sessionID,
			ClientID:   clientID,
			PlayerName: rec.PlayerName,
			Winner:     rec.Winner,
			Size:       rec.Size,
			Date:       rec.Date,
		}
		if err := h.publisher.PublishGameRecorded(ctx, payload); err != nil {
			slog.WarnContext(ctx, "Failed to publish game_recorded event", "record.id", id, "error", err)
			span.RecordError(err)
		}
	}

	select {
	case h.saved <- &saveResult{ref: ref, id: id, err: err}:
	case <-h.done:
	}
}

// evictIdle drops games nobody is watching that have not changed for the idle
// timeout. Games with a save in flight are kept until it lands.
func (h *Hub) evictIdle(ctx context.Context) {
	now := h.now()
	for clientID, e := range h.sessions {
		if len(h.subscribers[clientID]) > 0 || e.saving {
			continue
		}
		if now.Sub(e.lastActive) >= h.idleTimeout {
			h.evict(ctx, clientID, "idle")
		}
	}
}

func (h *Hub) evict(ctx context.Context, clientID, reason string) {
	e, ok := h.sessions[clientID]
	if !ok {
		return
	}
	e.stopTimer()
	delete(h.sessions, clientID)
	h.metrics.sessionsEvicted.Add(ctx, 1)
	slog.DebugContext(ctx, "Session evicted", "client.id", clientID, "session.id", e.session.ID, "reason", reason)
}
