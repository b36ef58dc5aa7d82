package game

import (
	"fmt"
	"strings"
)

// Cell is a (row, col) position on the board.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Snapshot is an immutable copy of the grid, indexed [row][col].
type Snapshot [][]PlayerMark

// String renders the snapshot with '.' for empty cells, one row per line.
func (s Snapshot) String() string {
	var sb strings.Builder
	for r, row := range s {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, cell := range row {
			if cell == None {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(cell))
			}
		}
	}
	return sb.String()
}

// Board is a fixed-size square grid of player marks.
type Board struct {
	size  int
	cells [][]PlayerMark
}

// NewBoard creates an empty board of the given size.
// Any positive size is accepted; the recognized game range is enforced by NewGame.
func NewBoard(size int) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	cells := make([][]PlayerMark, size)
	for r := range cells {
		cells[r] = make([]PlayerMark, size)
	}
	return &Board{size: size, cells: cells}, nil
}

// Size returns the board's side length.
func (b *Board) Size() int {
	return b.size
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// IsEmpty reports whether the cell holds no mark.
func (b *Board) IsEmpty(row, col int) (bool, error) {
	if !b.inBounds(row, col) {
		return false, fmt.Errorf("%w: (%d, %d) on %dx%d board", ErrOutOfBounds, row, col, b.size, b.size)
	}
	return b.cells[row][col] == None, nil
}

// Set places mark on the cell. Callers check IsEmpty first.
func (b *Board) Set(row, col int, mark PlayerMark) error {
	if !b.inBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d) on %dx%d board", ErrOutOfBounds, row, col, b.size, b.size)
	}
	b.cells[row][col] = mark
	return nil
}

// IsFull reports whether no empty cell remains.
func (b *Board) IsFull() bool {
	for _, row := range b.cells {
		for _, cell := range row {
			if cell == None {
				return false
			}
		}
	}
	return true
}

// EmptyCells lists every empty cell in row-major order.
func (b *Board) EmptyCells() []Cell {
	return b.Snapshot().EmptyCells()
}

// Snapshot returns a deep copy of the grid.
func (b *Board) Snapshot() Snapshot {
	snap := make(Snapshot, b.size)
	for r, row := range b.cells {
		snap[r] = make([]PlayerMark, b.size)
		copy(snap[r], row)
	}
	return snap
}

// EmptyCells lists every empty cell of the snapshot in row-major order.
func (s Snapshot) EmptyCells() []Cell {
	var cells []Cell
	for r, row := range s {
		for c, cell := range row {
			if cell == None {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// HasFullLine scans every row, column and both diagonals for a full line of mark.
// Unlike the engine's per-move check it does not need to know the last move.
func (b *Board) HasFullLine(mark PlayerMark) bool {
	n := b.size
	for i := 0; i < n; i++ {
		if b.rowIs(i, mark) || b.colIs(i, mark) {
			return true
		}
	}
	return b.mainDiagonalIs(mark) || b.antiDiagonalIs(mark)
}

func (b *Board) rowIs(row int, mark PlayerMark) bool {
	for c := 0; c < b.size; c++ {
		if b.cells[row][c] != mark {
			return false
		}
	}
	return true
}

func (b *Board) colIs(col int, mark PlayerMark) bool {
	for r := 0; r < b.size; r++ {
		if b.cells[r][col] != mark {
			return false
		}
	}
	return true
}

func (b *Board) mainDiagonalIs(mark PlayerMark) bool {
	for i := 0; i < b.size; i++ {
		if b.cells[i][i] != mark {
			return false
		}
	}
	return true
}

func (b *Board) antiDiagonalIs(mark PlayerMark) bool {
	for i := 0; i < b.size; i++ {
		if b.cells[i][b.size-1-i] != mark {
			return false
		}
	}
	return true
}
