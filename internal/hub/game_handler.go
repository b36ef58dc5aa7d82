package hub

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/bot"
	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/session"
)

func (h *Hub) handleStart(req *startRequest) {
	ctx, span := tracer.Start(req.ctx, "hub.handleStart", trace.WithAttributes(
		attribute.String("client.id", req.clientID),
		attribute.Int("game.size", req.size),
	))
	defer span.End()

	humanMark := h.chooseHumanMark()
	s, err := session.New(req.clientID, req.playerName, req.size, humanMark, bot.NewBotPlayer(humanMark.Opponent(), h.calculator), h.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start game")
		req.reply <- result{err: err}
		return
	}

	h.cancelReplay(req.clientID)
	if old, ok := h.sessions[req.clientID]; ok {
		old.stopTimer()
		slog.InfoContext(ctx, "Superseding active game", "client.id", req.clientID, "session.id", old.session.ID)
	}

	e := &entry{session: s, lastActive: h.now()}
	h.sessions[req.clientID] = e
	h.metrics.gamesStarted.Add(ctx, 1, metric.WithAttributes(attribute.Int("game.size", req.size)))

	span.SetAttributes(attribute.String("session.id", s.ID), attribute.String("human.mark", string(s.Human.Mark)))
	slog.InfoContext(ctx, "Game started", "client.id", req.clientID, "session.id", s.ID, "game.size", req.size, "human.mark", s.Human.Mark)

	if s.OpponentToMove() {
		h.scheduleOpponent(e, h.openingDelay)
	}

	v := h.viewOf(e)
	h.broadcast(ctx, v)
	req.reply <- result{view: v}
}

func (h *Hub) handleMove(req *moveRequest) {
	ctx, span := tracer.Start(req.ctx, "hub.handleMove", trace.WithAttributes(
		attribute.String("client.id", req.clientID),
		attribute.Int("move.row", req.row),
		attribute.Int("move.col", req.col),
	))
	defer span.End()

	e, ok := h.sessions[req.clientID]
	if !ok {
		span.SetStatus(codes.Error, "No active game")
		req.reply <- result{err: ErrNoActiveGame}
		return
	}

	if err := e.session.HumanMove(req.row, req.col); err != nil {
		slog.WarnContext(ctx, "Rejected move", "session.id", e.session.ID, "move.row", req.row, "move.col", req.col, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		req.reply <- result{view: h.viewOf(e), err: err}
		return
	}
	span.SetAttributes(attribute.Bool("move.valid", true))
	e.lastActive = h.now()

	h.afterMove(ctx, e)

	v := h.viewOf(e)
	h.broadcast(ctx, v)
	req.reply <- result{view: v}
}

func (h *Hub) handleQuery(req *queryRequest) {
	e, ok := h.sessions[req.clientID]
	if !ok {
		req.reply <- result{err: ErrNoActiveGame}
		return
	}
	e.lastActive = h.now()
	req.reply <- result{view: h.viewOf(e)}
}

// handleOpponentTurn plays the opponent's move once its delay has passed.
// Timers of a superseded session arrive with a stale session id and are dropped.
func (h *Hub) handleOpponentTurn(ctx context.Context, ref sessionRef) {
	e, ok := h.sessions[ref.clientID]
	if !ok || e.session.ID != ref.sessionID {
		slog.DebugContext(ctx, "Discarding stale opponent turn", "client.id", ref.clientID, "session.id", ref.sessionID)
		return
	}

	ctx, span := tracer.Start(ctx, "hub.handleOpponentTurn", trace.WithAttributes(
		attribute.String("client.id", ref.clientID),
		attribute.String("session.id", ref.sessionID),
	))
	defer span.End()

	e.timer = nil
	e.thinking = false
	e.lastActive = h.now()

	mv, err := e.session.OpponentMove()
	if err != nil {
		slog.ErrorContext(ctx, "Opponent could not move", "session.id", ref.sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Opponent could not move")
		h.broadcast(ctx, h.viewOf(e))
		return
	}
	span.SetAttributes(attribute.Int("move.row", mv.Row), attribute.Int("move.col", mv.Col))

	h.afterMove(ctx, e)
	h.broadcast(ctx, h.viewOf(e))
}

func (h *Hub) afterMove(ctx context.Context, e *entry) {
	if e.session.Game.IsFinished() {
		h.finish(ctx, e)
		return
	}
	if e.session.OpponentToMove() {
		h.scheduleOpponent(e, h.opponentDelay)
	}
}

func (h *Hub) finish(ctx context.Context, e *entry) {
	s := e.session
	winner := s.Game.Winner()
	if winner == game.None {
		winner = "draw"
	}
	h.metrics.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("game.winner", string(winner))))
	slog.InfoContext(ctx, "Game finished", "session.id", s.ID, "game.winner", winner, "move.count", s.Game.MoveCount())

	rec, err := s.Record(h.now())
	if err != nil {
		slog.ErrorContext(ctx, "Could not build game record", "session.id", s.ID, "error", err)
		return
	}

	e.saving = true
	go h.save(ctx, e.ref(), s.ClientID, rec)
}

func (h *Hub) handleSaved(ctx context.Context, res *saveResult) {
	if res.err != nil {
		h.metrics.saveFailures.Add(ctx, 1)
	} else {
		h.metrics.recordsSaved.Add(ctx, 1)
	}

	e, ok := h.sessions[res.ref.clientID]
	if !ok || e.session.ID != res.ref.sessionID {
		return
	}

	e.saving = false
	e.recordID = res.id
	e.saveErr = res.err
	e.lastActive = h.now()
	if e.detached {
		h.evict(ctx, res.ref.clientID, "client disconnected")
		return
	}
	h.broadcast(ctx, h.viewOf(e))
}
