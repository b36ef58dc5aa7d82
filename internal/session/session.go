package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/player"
	"github.com/tenishevR/tic-tac-toe-web/internal/record"
)

var (
	ErrNotYourTurn    = fmt.Errorf("%w: it is the opponent's turn", game.ErrIllegalMove)
	ErrGameInProgress = errors.New("game is still in progress")
)

// Session is one game between a human and the random opponent.
// It is not safe for concurrent use; the hub serializes access.
type Session struct {
	ID         string
	ClientID   string
	PlayerName string
	Human      player.Human
	Opponent   player.Agent
	Game       *game.Game
	StartedAt  time.Time
}

// New starts a game of size with the human playing humanMark against opponent,
// which must hold the other mark.
func New(clientID, playerName string, size int, humanMark game.PlayerMark, opponent player.Agent, now time.Time) (*Session, error) {
	g, err := game.NewGame(size, humanMark)
	if err != nil {
		return nil, err
	}
	if opponent.PlaysAs() != humanMark.Opponent() {
		return nil, fmt.Errorf("%w: opponent plays %q against human %q", game.ErrInvalidMark, opponent.PlaysAs(), humanMark)
	}

	name := record.NormalizePlayerName(playerName)
	return &Session{
		ID:         uuid.New().String(),
		ClientID:   clientID,
		PlayerName: name,
		Human:      player.Human{Mark: humanMark, Name: name},
		Opponent:   opponent,
		Game:       g,
		StartedAt:  now,
	}, nil
}

// ToMove is the source whose mark plays next, or nil once the game is over.
func (s *Session) ToMove() player.Source {
	switch {
	case s.Game.IsFinished():
		return nil
	case s.Game.CurrentTurn() == s.Human.Mark:
		return s.Human
	default:
		return s.Opponent
	}
}

// OpponentToMove reports whether the game waits on the opponent.
func (s *Session) OpponentToMove() bool {
	_, ok := s.ToMove().(player.Agent)
	return ok
}

// HumanMove applies the human's move at (row, col).
func (s *Session) HumanMove(row, col int) error {
	if s.Game.IsFinished() {
		return game.ErrGameAlreadyFinished
	}
	if s.Game.CurrentTurn() != s.Human.Mark {
		return ErrNotYourTurn
	}
	return s.Game.Move(row, col, s.Human.Mark)
}

// OpponentMove lets the agent pick a cell and plays it.
func (s *Session) OpponentMove() (game.Move, error) {
	if s.Game.IsFinished() {
		return game.Move{}, game.ErrGameAlreadyFinished
	}
	if s.Game.CurrentTurn() != s.Opponent.Mark {
		return game.Move{}, fmt.Errorf("%w: it is the human's turn", game.ErrIllegalMove)
	}

	row, col, err := s.Opponent.NextMove(s.Game.Board())
	if err != nil {
		return game.Move{}, fmt.Errorf("opponent could not choose a move: %w", err)
	}
	if err := s.Game.Move(row, col, s.Opponent.Mark); err != nil {
		return game.Move{}, err
	}

	moves := s.Game.Moves()
	return moves[len(moves)-1], nil
}

// Record snapshots the finished game for storage.
func (s *Session) Record(now time.Time) (*record.GameRecord, error) {
	if !s.Game.IsFinished() {
		return nil, ErrGameInProgress
	}
	return record.New(now, s.PlayerName, s.Human.Mark, s.Game.Winner(), s.Game.Size(), s.Game.Moves()), nil
}

// StatusText is the line shown above the board.
func (s *Session) StatusText() string {
	switch {
	case s.Game.IsDraw():
		return "It's a draw!"
	case s.Game.IsFinished():
		return fmt.Sprintf("Winner: %s", s.Game.Winner())
	default:
		return fmt.Sprintf("You play as %s", s.Human.Mark)
	}
}
