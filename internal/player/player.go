package player

import "github.com/tenishevR/tic-tac-toe-web/internal/game"

// Kind tags a move source.
type Kind string

const (
	KindHuman  Kind = "human"
	KindRandom Kind = "random"
)

// MoveCalculator chooses a cell for the agent to play.
type MoveCalculator interface {
	CalculateNextMove(board game.Snapshot) (row, col int, err error)
}

// Source is who supplies the moves for one mark: a Human or an Agent.
// The set of implementations is closed.
type Source interface {
	Kind() Kind
	PlaysAs() game.PlayerMark
	source()
}

// Human is a marker: its moves arrive from the input collaborator.
type Human struct {
	Mark game.PlayerMark
	Name string
}

func (Human) Kind() Kind                 { return KindHuman }
func (h Human) PlaysAs() game.PlayerMark { return h.Mark }
func (Human) source()                    {}

// Agent selects its own moves through a calculator.
type Agent struct {
	Mark       game.PlayerMark
	Calculator MoveCalculator
}

func (Agent) Kind() Kind                 { return KindRandom }
func (a Agent) PlaysAs() game.PlayerMark { return a.Mark }
func (Agent) source()                    {}

// NextMove asks the calculator for a cell on board.
func (a Agent) NextMove(board game.Snapshot) (row, col int, err error) {
	return a.Calculator.CalculateNextMove(board)
}
