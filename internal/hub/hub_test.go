package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tenishevR/tic-tac-toe-web/internal/events"
	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/player"
	"github.com/tenishevR/tic-tac-toe-web/internal/record"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository/mocks"
)

const waitTimeout = 2 * time.Second

var fixedNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

// scriptedCalculator plays a fixed list of cells, in order.
type scriptedCalculator struct {
	mu    sync.Mutex
	cells []game.Cell
}

func (s *scriptedCalculator) CalculateNextMove(board game.Snapshot) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cells) == 0 {
		empty := board.EmptyCells()
		if len(empty) == 0 {
			return -1, -1, fmt.Errorf("no cells left")
		}
		return empty[0].Row, empty[0].Col, nil
	}
	c := s.cells[0]
	s.cells = s.cells[1:]
	return c.Row, c.Col, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads []*events.GameRecordedPayload
}

func (p *recordingPublisher) PublishGameRecorded(_ context.Context, payload *events.GameRecordedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func newTestHub(t *testing.T, repo repository.GameRecordRepository, human game.PlayerMark, opts ...Option) *Hub {
	t.Helper()

	base := []Option{
		WithDelays(time.Millisecond, time.Millisecond),
		WithHumanMarkChooser(func() game.PlayerMark { return human }),
		WithClock(func() time.Time { return fixedNow }),
	}
	h, err := NewHub(repo, append(base, opts...)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func waitFor(t *testing.T, sub *Subscription, cond func(View) bool) View {
	t.Helper()
	timeout := time.After(waitTimeout)
	for {
		select {
		case v, ok := <-sub.Updates():
			require.True(t, ok, "subscription closed")
			if cond(v) {
				return v
			}
		case <-timeout:
			t.Fatal("timed out waiting for view")
			return View{}
		}
	}
}

func movesIs(n int) func(View) bool {
	return func(v View) bool { return len(v.Moves) == n }
}

// human X wins on the top row, the record is saved.
func TestHub_HumanWinIsRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGameRecordRepository(ctrl)
	pub := &recordingPublisher{}
	calc := &scriptedCalculator{cells: []game.Cell{{Row: 1, Col: 1}, {Row: 2, Col: 2}}}

	repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec *record.GameRecord) (int64, error) {
		assert.Equal(t, "alice", rec.PlayerName)
		assert.Equal(t, game.PlayerX, rec.HumanSymbol)
		assert.Equal(t, game.PlayerX, rec.Winner)
		assert.Equal(t, 3, rec.Size)
		assert.Len(t, rec.Moves, 5)
		assert.True(t, fixedNow.Equal(rec.Date))
		return 42, nil
	})

	h := newTestHub(t, repo, game.PlayerX, WithCalculator(calc), WithPublisher(pub))
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)

	v, err := h.StartGame(ctx, "c1", "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, game.PlayerX, v.HumanMark)
	assert.Equal(t, "You play as X", v.StatusText)
	assert.False(t, v.OpponentThinking)
	assert.Equal(t, player.KindHuman, v.ToMove)
	assert.Equal(t, player.KindRandom, v.OpponentKind)

	_, err = h.Move(ctx, "c1", 0, 0)
	require.NoError(t, err)
	waitFor(t, sub, movesIs(2))

	_, err = h.Move(ctx, "c1", 0, 1)
	require.NoError(t, err)
	waitFor(t, sub, movesIs(4))

	v, err = h.Move(ctx, "c1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, v.Status)
	assert.Equal(t, game.PlayerX, v.Winner)
	assert.Equal(t, "Winner: X", v.StatusText)
	assert.True(t, v.Saving)
	assert.Empty(t, v.ToMove)

	v = waitFor(t, sub, func(v View) bool { return v.RecordID != 0 })
	assert.Equal(t, int64(42), v.RecordID)
	assert.False(t, v.Saving)
	assert.Empty(t, v.SaveWarning)
	assert.Equal(t, 1, pub.count())

	_, err = h.Move(ctx, "c1", 1, 0)
	assert.ErrorIs(t, err, game.ErrGameAlreadyFinished)
}

func TestHub_OpponentOpensWhenHumanIsO(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGameRecordRepository(ctrl)
	calc := &scriptedCalculator{cells: []game.Cell{{Row: 2, Col: 2}}}

	// The opening delay is long enough for the rejected move below to land first.
	h := newTestHub(t, repo, game.PlayerO, WithCalculator(calc), WithDelays(time.Millisecond, 100*time.Millisecond))
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)

	v, err := h.StartGame(ctx, "c1", "", 4)
	require.NoError(t, err)
	assert.True(t, v.OpponentThinking)
	assert.Equal(t, record.DefaultPlayerName, v.PlayerName)
	assert.Equal(t, player.KindRandom, v.ToMove)

	_, err = h.Move(ctx, "c1", 0, 0)
	assert.ErrorIs(t, err, game.ErrIllegalMove)

	v = waitFor(t, sub, movesIs(1))
	assert.Equal(t, game.Move{MoveNumber: 1, Player: game.PlayerX, Row: 2, Col: 2}, v.Moves[0])
	assert.Equal(t, game.PlayerO, v.CurrentTurn)
	assert.False(t, v.OpponentThinking)
}

func TestHub_SaveFailureKeepsFinishedGame(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGameRecordRepository(ctrl)
	pub := &recordingPublisher{}
	calc := &scriptedCalculator{cells: []game.Cell{{Row: 1, Col: 1}, {Row: 2, Col: 2}}}

	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(0), fmt.Errorf("%w: disk full", repository.ErrStorage))

	h := newTestHub(t, repo, game.PlayerX, WithCalculator(calc), WithPublisher(pub))
	ctx := context.Background()
	sub, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)

	_, err = h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)
	for i, cell := range []game.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}} {
		_, err = h.Move(ctx, "c1", cell.Row, cell.Col)
		require.NoError(t, err)
		waitFor(t, sub, movesIs(2*(i+1)))
	}
	_, err = h.Move(ctx, "c1", 0, 2)
	require.NoError(t, err)

	v := waitFor(t, sub, func(v View) bool { return v.SaveWarning != "" })
	assert.Equal(t, game.StatusFinished, v.Status)
	assert.Zero(t, v.RecordID)
	assert.Len(t, v.Board.EmptyCells(), 4)
	assert.Zero(t, pub.count())
}

func TestHub_NoActiveGame(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX)
	ctx := context.Background()

	_, err := h.View(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNoActiveGame)

	_, err = h.Move(ctx, "nobody", 0, 0)
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

func TestHub_InvalidSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX)

	_, err := h.StartGame(context.Background(), "c1", "", 2)

	assert.ErrorIs(t, err, game.ErrInvalidSize)
}

func TestHub_RejectedMoveLeavesStateUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	calc := &scriptedCalculator{cells: []game.Cell{{Row: 1, Col: 1}}}
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX, WithCalculator(calc))
	ctx := context.Background()
	sub, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)

	_, err = h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)
	_, err = h.Move(ctx, "c1", 0, 0)
	require.NoError(t, err)
	before := waitFor(t, sub, movesIs(2))

	_, err = h.Move(ctx, "c1", 1, 1)
	assert.ErrorIs(t, err, game.ErrIllegalMove)
	_, err = h.Move(ctx, "c1", 3, 0)
	assert.ErrorIs(t, err, game.ErrOutOfBounds)

	after, err := h.View(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, before.Board, after.Board)
	assert.Equal(t, before.Moves, after.Moves)
}

func TestHub_StaleOpponentTurnIsDiscarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX, WithDelays(time.Hour, time.Hour))
	ctx := context.Background()

	first, err := h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)
	_, err = h.Move(ctx, "c1", 0, 0)
	require.NoError(t, err)

	second, err := h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)

	h.opponentTurn <- sessionRef{clientID: "c1", sessionID: first.SessionID}

	v, err := h.View(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, second.SessionID, v.SessionID)
	assert.Empty(t, v.Moves)
	assert.Equal(t, game.PlayerX, v.CurrentTurn)
}

func TestHub_BeginReplayCancelsPrevious(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX)
	ctx := context.Background()

	first, releaseFirst, err := h.BeginReplay(ctx, "c1")
	require.NoError(t, err)
	defer releaseFirst()

	second, releaseSecond, err := h.BeginReplay(ctx, "c1")
	require.NoError(t, err)
	defer releaseSecond()

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())

	other, releaseOther, err := h.BeginReplay(ctx, "c2")
	require.NoError(t, err)
	defer releaseOther()

	_, err = h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)

	assert.ErrorIs(t, second.Err(), context.Canceled)
	assert.NoError(t, other.Err())
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX)
	ctx := context.Background()

	_, err := h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)

	sub, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)

	v := <-sub.Updates()
	assert.Equal(t, "c1", v.ClientID)

	h.Unsubscribe(sub)
	_, ok := <-sub.Updates()
	assert.False(t, ok)
}

func TestHub_StoppedHub(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, err := NewHub(mocks.NewMockGameRecordRepository(ctrl))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	_, err = h.StartGame(context.Background(), "c1", "", 3)
	assert.ErrorIs(t, err, ErrHubStopped)
}

// manualClock is a clock tests move by hand.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestHub_DisconnectEvictsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX)
	ctx := context.Background()

	const clients = 200
	for i := range clients {
		clientID := fmt.Sprintf("c%d", i)
		sub, err := h.Subscribe(ctx, clientID)
		require.NoError(t, err)
		_, err = h.StartGame(ctx, clientID, "", 3)
		require.NoError(t, err)
		h.Unsubscribe(sub)
	}

	for i := range clients {
		_, err := h.View(ctx, fmt.Sprintf("c%d", i))
		require.ErrorIs(t, err, ErrNoActiveGame)
	}
}

func TestHub_OtherSubscriberKeepsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX)
	ctx := context.Background()

	first, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)
	second, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)
	_, err = h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)

	h.Unsubscribe(first)
	_, err = h.View(ctx, "c1")
	require.NoError(t, err)

	h.Unsubscribe(second)
	_, err = h.View(ctx, "c1")
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

func TestHub_DisconnectDuringSaveEvictsAfterSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGameRecordRepository(ctrl)
	calc := &scriptedCalculator{cells: []game.Cell{{Row: 1, Col: 1}, {Row: 2, Col: 2}}}

	release := make(chan struct{})
	saved := make(chan struct{})
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, *record.GameRecord) (int64, error) {
		<-release
		defer close(saved)
		return 7, nil
	})

	h := newTestHub(t, repo, game.PlayerX, WithCalculator(calc))
	ctx := context.Background()
	sub, err := h.Subscribe(ctx, "c1")
	require.NoError(t, err)

	_, err = h.StartGame(ctx, "c1", "", 3)
	require.NoError(t, err)
	for i, cell := range []game.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}} {
		_, err = h.Move(ctx, "c1", cell.Row, cell.Col)
		require.NoError(t, err)
		waitFor(t, sub, movesIs(2*i+2))
	}
	v, err := h.Move(ctx, "c1", 0, 2)
	require.NoError(t, err)
	require.True(t, v.Saving)

	h.Unsubscribe(sub)
	v, err = h.View(ctx, "c1")
	require.NoError(t, err, "kept while the record is being saved")
	assert.True(t, v.Saving)

	close(release)
	<-saved
	assert.Eventually(t, func() bool {
		_, err := h.View(ctx, "c1")
		return errors.Is(err, ErrNoActiveGame)
	}, waitTimeout, 5*time.Millisecond)
}

func TestHub_IdleSessionsAreSwept(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := &manualClock{now: fixedNow}
	h := newTestHub(t, mocks.NewMockGameRecordRepository(ctrl), game.PlayerX,
		WithClock(clock.Now),
		WithIdleTimeout(time.Minute, time.Millisecond),
	)
	ctx := context.Background()

	_, err := h.StartGame(ctx, "idle", "", 3)
	require.NoError(t, err)
	_, err = h.StartGame(ctx, "watched", "", 3)
	require.NoError(t, err)
	sub, err := h.Subscribe(ctx, "watched")
	require.NoError(t, err)
	defer h.Unsubscribe(sub)

	clock.Advance(30 * time.Second)
	time.Sleep(50 * time.Millisecond)
	_, err = h.View(ctx, "idle")
	require.NoError(t, err, "not idle long enough yet")

	clock.Advance(2 * time.Minute)
	time.Sleep(50 * time.Millisecond)

	_, err = h.View(ctx, "idle")
	assert.ErrorIs(t, err, ErrNoActiveGame)
	_, err = h.View(ctx, "watched")
	assert.NoError(t, err, "games with a subscriber are never swept")
}

func TestNewHub_RejectsBadIdleTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := NewHub(mocks.NewMockGameRecordRepository(ctrl), WithIdleTimeout(0, time.Second))
	assert.Error(t, err)
}

func TestHub_BroadcastKeepsLatestView(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, err := NewHub(mocks.NewMockGameRecordRepository(ctrl))
	require.NoError(t, err)

	sub := &Subscription{ClientID: "c1", updates: make(chan View, subscriberBuffer)}
	h.subscribers["c1"] = map[*Subscription]struct{}{sub: {}}

	total := subscriberBuffer + 5
	for i := range total {
		h.broadcast(context.Background(), View{ClientID: "c1", Size: i})
	}

	require.Len(t, sub.updates, subscriberBuffer)
	var got []int
	for range subscriberBuffer {
		got = append(got, (<-sub.updates).Size)
	}
	assert.Equal(t, 5, got[0], "oldest views are the ones dropped")
	assert.Equal(t, total-1, got[len(got)-1], "the latest view always arrives")
}
