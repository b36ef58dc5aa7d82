package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/tenishevR/tic-tac-toe-web/internal/bot"
	"github.com/tenishevR/tic-tac-toe-web/internal/events"
	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/player"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository"
)

const (
	DefaultOpponentDelay = 300 * time.Millisecond
	DefaultOpeningDelay  = 500 * time.Millisecond

	DefaultIdleTimeout = 30 * time.Minute

	defaultSaveTimeout   = 5 * time.Second
	defaultSweepInterval = time.Minute
	subscriberBuffer     = 32
)

var tracer = otel.Tracer("hub")

var (
	ErrNoActiveGame = errors.New("no active game for client")
	ErrHubStopped   = errors.New("hub is not running")
)

// Hub owns every game session. All state lives in the Run goroutine;
// callers and timers talk to it over channels.
type Hub struct {
	repo            repository.GameRecordRepository
	publisher       events.Publisher
	calculator      player.MoveCalculator
	chooseHumanMark func() game.PlayerMark
	now             func() time.Time
	opponentDelay   time.Duration
	openingDelay    time.Duration
	saveTimeout     time.Duration
	idleTimeout     time.Duration
	sweepInterval   time.Duration
	metrics         *metrics

	sessions    map[string]*entry
	replays     map[string]*replayEntry
	subscribers map[string]map[*Subscription]struct{}
	nextReplay  uint64

	start        chan *startRequest
	move         chan *moveRequest
	query        chan *queryRequest
	subscribe    chan *subscribeRequest
	unsubscribe  chan *Subscription
	replay       chan *replayRequest
	replayDone   chan replayToken
	opponentTurn chan sessionRef
	saved        chan *saveResult
	done         chan struct{}
}

// Option configures a Hub.
type Option func(*Hub)

// WithDelays sets the pause before the opponent answers a human move
// and before it plays the opening move.
func WithDelays(opponent, opening time.Duration) Option {
	return func(h *Hub) {
		h.opponentDelay = opponent
		h.openingDelay = opening
	}
}

func WithCalculator(c player.MoveCalculator) Option {
	return func(h *Hub) { h.calculator = c }
}

func WithHumanMarkChooser(choose func() game.PlayerMark) Option {
	return func(h *Hub) { h.chooseHumanMark = choose }
}

func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(h *Hub) { h.publisher = p }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(h *Hub) { h.saveTimeout = d }
}

// WithIdleTimeout evicts games nobody is watching once they have been idle for
// ttl. The sessions are checked every sweepEvery.
func WithIdleTimeout(ttl, sweepEvery time.Duration) Option {
	return func(h *Hub) {
		h.idleTimeout = ttl
		h.sweepInterval = sweepEvery
	}
}

// NewHub creates a new hub storing finished games in repo.
func NewHub(repo repository.GameRecordRepository, opts ...Option) (*Hub, error) {
	m, err := newMetrics(otel.Meter("hub"))
	if err != nil {
		return nil, fmt.Errorf("failed to create hub metrics: %w", err)
	}

	h := &Hub{
		repo:            repo,
		publisher:       events.NewNopPublisher(),
		calculator:      bot.NewRandomMoveCalculator(nil),
		chooseHumanMark: func() game.PlayerMark { return game.RandomlyChooseHumanMark(nil) },
		now:             time.Now,
		opponentDelay:   DefaultOpponentDelay,
		openingDelay:    DefaultOpeningDelay,
		saveTimeout:     defaultSaveTimeout,
		idleTimeout:     DefaultIdleTimeout,
		sweepInterval:   defaultSweepInterval,
		metrics:         m,

		sessions:    make(map[string]*entry),
		replays:     make(map[string]*replayEntry),
		subscribers: make(map[string]map[*Subscription]struct{}),

		start:        make(chan *startRequest),
		move:         make(chan *moveRequest),
		query:        make(chan *queryRequest),
		subscribe:    make(chan *subscribeRequest),
		unsubscribe:  make(chan *Subscription),
		replay:       make(chan *replayRequest),
		replayDone:   make(chan replayToken),
		opponentTurn: make(chan sessionRef),
		saved:        make(chan *saveResult),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.idleTimeout <= 0 || h.sweepInterval <= 0 {
		return nil, fmt.Errorf("idle timeout and sweep interval must be positive, got %s and %s", h.idleTimeout, h.sweepInterval)
	}
	return h, nil
}

// Run processes requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Hub started", "opponent.delay", h.opponentDelay, "opening.delay", h.openingDelay, "idle.timeout", h.idleTimeout)
	defer h.shutdown(ctx)

	sweepTicker := time.NewTicker(h.sweepInterval)
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-sweepTicker.C:
			h.evictIdle(ctx)

		case req := <-h.start:
			h.handleStart(req)

		case req := <-h.move:
			h.handleMove(req)

		case req := <-h.query:
			h.handleQuery(req)

		case ref := <-h.opponentTurn:
			h.handleOpponentTurn(ctx, ref)

		case res := <-h.saved:
			h.handleSaved(ctx, res)

		case req := <-h.subscribe:
			h.handleSubscribe(req)

		case sub := <-h.unsubscribe:
			h.removeSubscriber(ctx, sub)

		case req := <-h.replay:
			h.handleBeginReplay(req)

		case tok := <-h.replayDone:
			if r, ok := h.replays[tok.clientID]; ok && r.id == tok.id {
				delete(h.replays, tok.clientID)
			}
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	close(h.done)
	for _, e := range h.sessions {
		e.stopTimer()
	}
	for clientID := range h.replays {
		h.cancelReplay(clientID)
	}
	for _, subs := range h.subscribers {
		for sub := range subs {
			close(sub.updates)
		}
	}
	h.subscribers = make(map[string]map[*Subscription]struct{})
	slog.InfoContext(ctx, "Hub stopped", "sessions.count", len(h.sessions))
}

// StartGame replaces the client's current game with a new one of size.
// An empty playerName is recorded as "Anonymous".
func (h *Hub) StartGame(ctx context.Context, clientID, playerName string, size int) (View, error) {
	req := &startRequest{ctx: ctx, clientID: clientID, playerName: playerName, size: size, reply: make(chan result, 1)}
	if err := submit(ctx, h, h.start, req); err != nil {
		return View{}, err
	}
	return h.await(ctx, req.reply)
}

// Move plays the human's mark at (row, col) in the client's game.
func (h *Hub) Move(ctx context.Context, clientID string, row, col int) (View, error) {
	req := &moveRequest{ctx: ctx, clientID: clientID, row: row, col: col, reply: make(chan result, 1)}
	if err := submit(ctx, h, h.move, req); err != nil {
		return View{}, err
	}
	return h.await(ctx, req.reply)
}

// View returns the client's current game.
func (h *Hub) View(ctx context.Context, clientID string) (View, error) {
	req := &queryRequest{clientID: clientID, reply: make(chan result, 1)}
	if err := submit(ctx, h, h.query, req); err != nil {
		return View{}, err
	}
	return h.await(ctx, req.reply)
}

// Subscribe registers for view updates of clientID. The current view, if any,
// is delivered first. The channel is closed by Unsubscribe or when the hub stops.
func (h *Hub) Subscribe(ctx context.Context, clientID string) (*Subscription, error) {
	req := &subscribeRequest{
		sub:   &Subscription{ClientID: clientID, updates: make(chan View, subscriberBuffer)},
		reply: make(chan struct{}, 1),
	}
	if err := submit(ctx, h, h.subscribe, req); err != nil {
		return nil, err
	}
	select {
	case <-req.reply:
		return req.sub, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, ErrHubStopped
	}
}

// Unsubscribe stops delivery to sub and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	select {
	case h.unsubscribe <- sub:
	case <-h.done:
	}
}

// BeginReplay cancels the client's running replay, if any, and returns the
// context for a new one. The context is also cancelled by the next StartGame.
// release must be called when the replay ends.
func (h *Hub) BeginReplay(ctx context.Context, clientID string) (replayCtx context.Context, release func(), err error) {
	req := &replayRequest{ctx: ctx, clientID: clientID, reply: make(chan *replayEntry, 1)}
	if err := submit(ctx, h, h.replay, req); err != nil {
		return nil, nil, err
	}

	var r *replayEntry
	select {
	case r = <-req.reply:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-h.done:
		return nil, nil, ErrHubStopped
	}

	release = func() {
		r.cancel()
		select {
		case h.replayDone <- replayToken{clientID: clientID, id: r.id}:
		case <-h.done:
		}
	}
	return r.ctx, release, nil
}

func submit[T any](ctx context.Context, h *Hub, ch chan<- T, req T) error {
	select {
	case ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) await(ctx context.Context, reply <-chan result) (View, error) {
	select {
	case r := <-reply:
		return r.view, r.err
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-h.done:
		return View{}, ErrHubStopped
	}
}
