package replay

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/record"
)

func mv(n int, p game.PlayerMark, row, col int) game.Move {
	return game.Move{MoveNumber: n, Player: p, Row: row, Col: col}
}

func topRowWin() *record.GameRecord {
	rec := record.New(time.Now(), "tester", game.PlayerX, game.PlayerX, 3, []game.Move{
		mv(1, game.PlayerX, 0, 0),
		mv(2, game.PlayerO, 1, 1),
		mv(3, game.PlayerX, 0, 1),
		mv(4, game.PlayerO, 2, 2),
		mv(5, game.PlayerX, 0, 2),
	})
	rec.ID = 1
	return rec
}

func fullBoardDraw() *record.GameRecord {
	return record.New(time.Now(), "", game.PlayerO, game.None, 3, []game.Move{
		mv(1, game.PlayerX, 0, 0),
		mv(2, game.PlayerO, 0, 1),
		mv(3, game.PlayerX, 0, 2),
		mv(4, game.PlayerO, 1, 1),
		mv(5, game.PlayerX, 1, 0),
		mv(6, game.PlayerO, 1, 2),
		mv(7, game.PlayerX, 2, 1),
		mv(8, game.PlayerO, 2, 0),
		mv(9, game.PlayerX, 2, 2),
	})
}

func TestReplay_Win(t *testing.T) {
	frames, err := NewDriver(0).Replay(topRowWin())
	require.NoError(t, err)

	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, i+1, f.MoveNumber)
	}
	assert.Equal(t, "XXX\n.O.\n..O", frames[4].Board.String())
	assert.Equal(t, "X..\n...\n...", frames[0].Board.String())
}

func TestReplay_Draw(t *testing.T) {
	frames, err := NewDriver(0).Replay(fullBoardDraw())
	require.NoError(t, err)
	require.Len(t, frames, 9)
	assert.Empty(t, frames[8].Board.EmptyCells())
}

func TestReplay_RoundTripRandomGames(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	for n := game.MinSize; n <= game.MaxSize; n++ {
		g, err := game.NewGame(n, game.RandomlyChooseHumanMark(r))
		require.NoError(t, err)
		for !g.IsFinished() {
			empty := g.Board().EmptyCells()
			c := empty[r.IntN(len(empty))]
			require.NoError(t, g.Move(c.Row, c.Col, g.CurrentTurn()))
		}

		rec := record.New(time.Now(), "", g.HumanMark(), g.Winner(), n, g.Moves())
		frames, err := NewDriver(0).Replay(rec)
		require.NoError(t, err, "size %d", n)
		require.Len(t, frames, len(rec.Moves))
		assert.Equal(t, g.Board().String(), frames[len(frames)-1].Board.String())
	}
}

func TestReplay_Corrupt(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *record.GameRecord)
	}{
		{"wrong winner", func(r *record.GameRecord) { r.Winner = game.PlayerO }},
		{"winner claimed for a draw", func(r *record.GameRecord) { r.Winner = game.PlayerX; r.Moves = fullBoardDraw().Moves }},
		{"draw claimed for a win", func(r *record.GameRecord) { r.Winner = game.None }},
		{"game not finished", func(r *record.GameRecord) { r.Moves = r.Moves[:4] }},
		{"move after the win", func(r *record.GameRecord) {
			r.Moves = append(r.Moves, mv(6, game.PlayerO, 2, 0))
		}},
		{"cell played twice", func(r *record.GameRecord) { r.Moves[2].Row, r.Moves[2].Col = 0, 0 }},
		{"same player twice", func(r *record.GameRecord) { r.Moves[1].Player = game.PlayerX }},
		{"off the board", func(r *record.GameRecord) { r.Moves[1].Row = 5 }},
		{"non-contiguous numbers", func(r *record.GameRecord) { r.Moves[3].MoveNumber = 7 }},
		{"size out of range", func(r *record.GameRecord) { r.Size = 12 }},
		{"unknown human symbol", func(r *record.GameRecord) { r.HumanSymbol = game.None }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := topRowWin()
			tt.mutate(rec)

			frames, err := NewDriver(0).Replay(rec)

			require.ErrorIs(t, err, ErrCorruptRecord)
			assert.Nil(t, frames)
		})
	}

	t.Run("nil record", func(t *testing.T) {
		_, err := NewDriver(0).Replay(nil)
		require.ErrorIs(t, err, ErrCorruptRecord)
	})
}

func TestPlay_EmitsInOrder(t *testing.T) {
	d := NewDriver(time.Millisecond)
	var got []int

	err := d.Play(context.Background(), topRowWin(), func(f Frame) error {
		got = append(got, f.MoveNumber)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestPlay_CorruptEmitsNothing(t *testing.T) {
	rec := topRowWin()
	rec.Winner = game.PlayerO
	called := false

	err := NewDriver(time.Millisecond).Play(context.Background(), rec, func(Frame) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.False(t, called)
}

func TestPlay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDriver(5 * time.Millisecond)
	count := 0

	err := d.Play(ctx, topRowWin(), func(f Frame) error {
		count++
		if count == 2 {
			cancel()
		}
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, count)
}

func TestPlay_EmitError(t *testing.T) {
	boom := errors.New("connection closed")

	err := NewDriver(time.Millisecond).Play(context.Background(), topRowWin(), func(Frame) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
}
