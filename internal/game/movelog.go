package game

// Move is one recorded move. MoveNumber starts at 1.
type Move struct {
	MoveNumber int        `json:"moveNumber"`
	Player     PlayerMark `json:"player"`
	Row        int        `json:"row"`
	Col        int        `json:"col"`
}

// MoveLog is the append-only move sequence of one game.
type MoveLog struct {
	moves []Move
}

// Append records a move and assigns it the next move number.
func (l *MoveLog) Append(player PlayerMark, row, col int) Move {
	m := Move{
		MoveNumber: len(l.moves) + 1,
		Player:     player,
		Row:        row,
		Col:        col,
	}
	l.moves = append(l.moves, m)
	return m
}

// Len returns the number of recorded moves.
func (l *MoveLog) Len() int {
	return len(l.moves)
}

// Moves returns a copy of the recorded moves in play order.
func (l *MoveLog) Moves() []Move {
	out := make([]Move, len(l.moves))
	copy(out, l.moves)
	return out
}
