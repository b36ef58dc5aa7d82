package bot

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
)

var ErrNoLegalMove = errors.New("no legal move: board is full")

// RandomMoveCalculator picks uniformly among the empty cells.
// It is not safe for concurrent use; the hub calls it from a single goroutine.
type RandomMoveCalculator struct {
	rng *rand.Rand
}

// NewRandomMoveCalculator creates a calculator drawing from src.
// A nil src uses a PCG seeded from the clock.
func NewRandomMoveCalculator(src rand.Source) *RandomMoveCalculator {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	return &RandomMoveCalculator{rng: rand.New(src)}
}

// CalculateNextMove returns a uniformly random empty cell of board.
func (c *RandomMoveCalculator) CalculateNextMove(board game.Snapshot) (row, col int, err error) {
	availableMoves := board.EmptyCells()
	if len(availableMoves) == 0 {
		return -1, -1, ErrNoLegalMove
	}

	move := availableMoves[c.rng.IntN(len(availableMoves))]
	return move.Row, move.Col, nil
}
