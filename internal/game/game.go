package game

import (
	"fmt"
)

// GameStatus is the engine state.
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)

// Game is the turn state machine for one N×N game. X always moves first.
type Game struct {
	board       *Board
	log         MoveLog
	currentTurn PlayerMark
	humanMark   PlayerMark
	winner      PlayerMark
	finished    bool
}

// NewGame creates a game on an empty board. size must be within [MinSize, MaxSize]
// and humanMark must be X or O.
func NewGame(size int, humanMark PlayerMark) (*Game, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: %d, want %d..%d", ErrInvalidSize, size, MinSize, MaxSize)
	}
	if !humanMark.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMark, humanMark)
	}

	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}

	return &Game{
		board:       board,
		currentTurn: PlayerX,
		humanMark:   humanMark,
		winner:      None,
	}, nil
}

// Move applies mark at (row, col). The move is rejected, leaving the game untouched,
// if the game is over, it is not mark's turn, or the cell is taken.
func (g *Game) Move(row, col int, mark PlayerMark) error {
	if g.finished {
		return ErrGameAlreadyFinished
	}
	if mark != g.currentTurn {
		return fmt.Errorf("%w: %q played on %q's turn", ErrIllegalMove, mark, g.currentTurn)
	}

	empty, err := g.board.IsEmpty(row, col)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("%w: cell (%d, %d) already occupied", ErrIllegalMove, row, col)
	}

	if err := g.board.Set(row, col, mark); err != nil {
		return err
	}
	g.log.Append(mark, row, col)

	switch {
	case g.checkWin(row, col, mark):
		g.winner = mark
		g.finished = true
	case g.board.IsFull():
		g.finished = true
	default:
		g.currentTurn = g.currentTurn.Opponent()
	}
	return nil
}

// checkWin looks only at the lines through the last move, which is enough as long as
// it runs after every move.
func (g *Game) checkWin(row, col int, mark PlayerMark) bool {
	b := g.board
	if b.rowIs(row, mark) {
		return true
	}
	if b.colIs(col, mark) {
		return true
	}
	if row == col && b.mainDiagonalIs(mark) {
		return true
	}
	if row+col == b.size-1 && b.antiDiagonalIs(mark) {
		return true
	}
	return false
}

// Board returns a snapshot of the current grid.
func (g *Game) Board() Snapshot {
	return g.board.Snapshot()
}

// Size returns the board's side length.
func (g *Game) Size() int {
	return g.board.Size()
}

// CurrentTurn returns the mark expected to move next. After the game ends it keeps
// the mark of the last player.
func (g *Game) CurrentTurn() PlayerMark {
	return g.currentTurn
}

// HumanMark returns the mark the human plays.
func (g *Game) HumanMark() PlayerMark {
	return g.humanMark
}

// Winner returns X, O, or None for a draw or an unfinished game.
func (g *Game) Winner() PlayerMark {
	return g.winner
}

// IsFinished reports whether the game ended in a win or a draw.
func (g *Game) IsFinished() bool {
	return g.finished
}

// IsDraw reports whether the board filled up with no full line.
func (g *Game) IsDraw() bool {
	return g.finished && g.winner == None
}

// Status returns StatusInProgress or StatusFinished.
func (g *Game) Status() GameStatus {
	if g.finished {
		return StatusFinished
	}
	return StatusInProgress
}

// Moves exports the move history in play order.
func (g *Game) Moves() []Move {
	return g.log.Moves()
}

// MoveCount returns the number of moves applied so far.
func (g *Game) MoveCount() int {
	return g.log.Len()
}

// HasFullLine reports whether mark owns any complete line on the board.
func (g *Game) HasFullLine(mark PlayerMark) bool {
	return g.board.HasFullLine(mark)
}
