package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/record"
	"github.com/tenishevR/tic-tac-toe-web/internal/replay"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository/mocks"
)

// A full 3x3 board with no line.
func drawRecord() *record.GameRecord {
	cells := []game.Cell{
		{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2},
		{Row: 1, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 2},
		{Row: 2, Col: 1}, {Row: 2, Col: 0}, {Row: 2, Col: 2},
	}
	moves := make([]game.Move, len(cells))
	mark := game.PlayerX
	for i, c := range cells {
		moves[i] = game.Move{MoveNumber: i + 1, Player: mark, Row: c.Row, Col: c.Col}
		mark = mark.Opponent()
	}
	rec := record.New(time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC), "", game.PlayerO, game.None, 3, moves)
	rec.ID = 3
	return rec
}

func TestRecordService_Replay(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGameRecordRepository(ctrl)
	repo.EXPECT().FetchByID(gomock.Any(), int64(3)).Return(drawRecord(), nil)

	frames, err := NewRecordService(repo, replay.NewDriver(0)).Replay(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, frames, 9)
	assert.Empty(t, frames[8].Board.EmptyCells())
}

func TestRecordService_ReplayCorrupt(t *testing.T) {
	rec := drawRecord()
	rec.Winner = game.PlayerX

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGameRecordRepository(ctrl)
	repo.EXPECT().FetchByID(gomock.Any(), int64(3)).Return(rec, nil)

	_, err := NewRecordService(repo, replay.NewDriver(0)).Replay(context.Background(), 3)

	assert.ErrorIs(t, err, replay.ErrCorruptRecord)
}

// Fetching an id that was never stored.
func TestRecordService_FetchMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGameRecordRepository(ctrl)
	repo.EXPECT().FetchByID(gomock.Any(), int64(99)).Return(nil, repository.ErrRecordNotFound).Times(2)
	svc := NewRecordService(repo, replay.NewDriver(0))

	_, err := svc.Fetch(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	_, err = svc.Replay(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}
