package game

import "errors"

var (
	// Contract violations by the caller.
	ErrInvalidSize = errors.New("invalid board size")
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrInvalidMark = errors.New("invalid player mark")

	// Rejected actions; the game state is left unchanged.
	ErrIllegalMove         = errors.New("illegal move")
	ErrGameAlreadyFinished = errors.New("game already finished")
)
