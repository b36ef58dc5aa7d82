package game

import "math/rand/v2"

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"
)

// Recognized board sizes.
const (
	MinSize = 3
	MaxSize = 10
)

// IsPlayer reports whether m is X or O.
func (m PlayerMark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

// Opponent returns the opposing mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// RandomlyChooseHumanMark picks the human's mark with a fair coin.
// X always moves first, so this also decides who opens the game.
func RandomlyChooseHumanMark(r *rand.Rand) PlayerMark {
	var n int
	if r == nil {
		n = rand.IntN(2)
	} else {
		n = r.IntN(2)
	}
	if n == 0 {
		return PlayerX
	}
	return PlayerO
}
