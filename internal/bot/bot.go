package bot

import (
	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/player"
)

// NewBotPlayer creates the opponent playing mark with calc. A nil calc picks
// uniformly at random with a clock-seeded generator.
func NewBotPlayer(mark game.PlayerMark, calc player.MoveCalculator) player.Agent {
	if calc == nil {
		calc = NewRandomMoveCalculator(nil)
	}
	return player.Agent{
		Mark:       mark,
		Calculator: calc,
	}
}
