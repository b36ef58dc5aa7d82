package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/player"
	"github.com/tenishevR/tic-tac-toe-web/internal/session"
)

const saveWarning = "Game finished but could not be saved"

// View is what a client sees of its game.
type View struct {
	SessionID        string          `json:"sessionId"`
	ClientID         string          `json:"clientId"`
	PlayerName       string          `json:"playerName"`
	Size             int             `json:"size"`
	Board            game.Snapshot   `json:"board"`
	HumanMark        game.PlayerMark `json:"humanMark"`
	CurrentTurn      game.PlayerMark `json:"currentTurn"`
	ToMove           player.Kind     `json:"toMove,omitempty"`
	OpponentKind     player.Kind     `json:"opponentKind"`
	Status           game.GameStatus `json:"status"`
	Winner           game.PlayerMark `json:"winner,omitempty"`
	StatusText       string          `json:"statusText"`
	Moves            []game.Move     `json:"moves"`
	OpponentThinking bool            `json:"opponentThinking"`
	Saving           bool            `json:"saving"`
	RecordID         int64           `json:"recordId,omitempty"`
	SaveWarning      string          `json:"saveWarning,omitempty"`
}

// Subscription delivers the views of one client.
type Subscription struct {
	ClientID string
	updates  chan View
}

func (s *Subscription) Updates() <-chan View {
	return s.updates
}

type entry struct {
	session    *session.Session
	timer      *time.Timer
	thinking   bool
	saving     bool
	recordID   int64
	saveErr    error
	lastActive time.Time
	// detached is set when the last subscriber left while the record was
	// still being saved; the session goes once the save lands.
	detached bool
}

func (e *entry) ref() sessionRef {
	return sessionRef{clientID: e.session.ClientID, sessionID: e.session.ID}
}

func (e *entry) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.thinking = false
}

type sessionRef struct {
	clientID  string
	sessionID string
}

type result struct {
	view View
	err  error
}

type startRequest struct {
	ctx        context.Context
	clientID   string
	playerName string
	size       int
	reply      chan result
}

type moveRequest struct {
	ctx      context.Context
	clientID string
	row, col int
	reply    chan result
}

type queryRequest struct {
	clientID string
	reply    chan result
}

type subscribeRequest struct {
	sub   *Subscription
	reply chan struct{}
}

type replayRequest struct {
	ctx      context.Context
	clientID string
	reply    chan *replayEntry
}

type replayEntry struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

type replayToken struct {
	clientID string
	id       uint64
}

type saveResult struct {
	ref sessionRef
	id  int64
	err error
}

func (h *Hub) viewOf(e *entry) View {
	s := e.session
	v := View{
		SessionID:        s.ID,
		ClientID:         s.ClientID,
		PlayerName:       s.PlayerName,
		Size:             s.Game.Size(),
		Board:            s.Game.Board(),
		HumanMark:        s.Human.Mark,
		CurrentTurn:      s.Game.CurrentTurn(),
		OpponentKind:     s.Opponent.Kind(),
		Status:           s.Game.Status(),
		Winner:           s.Game.Winner(),
		StatusText:       s.StatusText(),
		Moves:            s.Game.Moves(),
		OpponentThinking: e.thinking,
		Saving:           e.saving,
		RecordID:         e.recordID,
	}
	if src := s.ToMove(); src != nil {
		v.ToMove = src.Kind()
	}
	if e.saveErr != nil {
		v.SaveWarning = saveWarning
	}
	return v
}

// broadcast sends v to the client's subscribers without blocking the loop.
// A subscriber that is not keeping up loses its oldest pending view, never v.
func (h *Hub) broadcast(ctx context.Context, v View) {
	for sub := range h.subscribers[v.ClientID] {
		select {
		case sub.updates <- v:
			continue
		default:
		}

		slog.WarnContext(ctx, "Subscriber is not keeping up, dropping oldest update", "client.id", v.ClientID, "session.id", v.SessionID)
		select {
		case <-sub.updates:
		default:
		}
		// The loop is the only sender, so there is room now.
		sub.updates <- v
	}
}

func (h *Hub) handleSubscribe(req *subscribeRequest) {
	sub := req.sub
	subs, ok := h.subscribers[sub.ClientID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.subscribers[sub.ClientID] = subs
	}
	subs[sub] = struct{}{}

	if e, ok := h.sessions[sub.ClientID]; ok {
		e.detached = false
		e.lastActive = h.now()
		sub.updates <- h.viewOf(e)
	}
	req.reply <- struct{}{}
}

// removeSubscriber closes sub. When it was the client's last one, the game
// goes with it; a record still being saved keeps it until the save lands.
func (h *Hub) removeSubscriber(ctx context.Context, sub *Subscription) {
	subs, ok := h.subscribers[sub.ClientID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.updates)
	if len(subs) > 0 {
		return
	}
	delete(h.subscribers, sub.ClientID)

	e, ok := h.sessions[sub.ClientID]
	if !ok {
		return
	}
	if e.saving {
		e.detached = true
		return
	}
	h.evict(ctx, sub.ClientID, "client disconnected")
}

func (h *Hub) handleBeginReplay(req *replayRequest) {
	h.cancelReplay(req.clientID)

	h.nextReplay++
	ctx, cancel := context.WithCancel(req.ctx)
	r := &replayEntry{id: h.nextReplay, ctx: ctx, cancel: cancel}
	h.replays[req.clientID] = r
	req.reply <- r
}

func (h *Hub) cancelReplay(clientID string) {
	if r, ok := h.replays[clientID]; ok {
		r.cancel()
		delete(h.replays, clientID)
	}
}
