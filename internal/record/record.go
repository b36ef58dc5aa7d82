package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
)

const (
	// DateLayout is ISO-8601 in UTC with millisecond precision.
	DateLayout = "2006-01-02T15:04:05.000Z07:00"

	DefaultPlayerName = "Anonymous"
)

var ErrInvalidRecord = errors.New("invalid game record")

// GameRecord is the immutable snapshot of one completed game.
// Winner is game.None for a draw.
type GameRecord struct {
	ID          int64
	Date        time.Time
	PlayerName  string
	HumanSymbol game.PlayerMark
	Winner      game.PlayerMark
	Size        int
	Moves       []game.Move
}

// New builds a record without an id; the store assigns one on save.
func New(date time.Time, playerName string, humanSymbol, winner game.PlayerMark, size int, moves []game.Move) *GameRecord {
	m := make([]game.Move, len(moves))
	copy(m, moves)
	return &GameRecord{
		Date:        date.UTC().Truncate(time.Millisecond),
		PlayerName:  NormalizePlayerName(playerName),
		HumanSymbol: humanSymbol,
		Winner:      winner,
		Size:        size,
		Moves:       m,
	}
}

// NormalizePlayerName trims name and falls back to DefaultPlayerName.
func NormalizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPlayerName
	}
	return name
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate accepts any RFC 3339 timestamp, with or without fractional seconds.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrInvalidRecord, s, err)
	}
	return t.UTC(), nil
}

// Validate checks the record's shape: size range, symbols and contiguous move numbers.
// Whether the moves form a legal game is checked by replaying them.
func (r *GameRecord) Validate() error {
	if r.Size < game.MinSize || r.Size > game.MaxSize {
		return fmt.Errorf("%w: size %d", ErrInvalidRecord, r.Size)
	}
	if !r.HumanSymbol.IsPlayer() {
		return fmt.Errorf("%w: human symbol %q", ErrInvalidRecord, r.HumanSymbol)
	}
	if r.Winner != game.None && !r.Winner.IsPlayer() {
		return fmt.Errorf("%w: winner %q", ErrInvalidRecord, r.Winner)
	}
	for i, m := range r.Moves {
		if m.MoveNumber != i+1 {
			return fmt.Errorf("%w: move at index %d has number %d", ErrInvalidRecord, i, m.MoveNumber)
		}
		if !m.Player.IsPlayer() {
			return fmt.Errorf("%w: move %d has player %q", ErrInvalidRecord, m.MoveNumber, m.Player)
		}
	}
	return nil
}

type wireRecord struct {
	ID          int64       `json:"id"`
	Date        string      `json:"date"`
	PlayerName  string      `json:"playerName"`
	HumanSymbol string      `json:"humanSymbol"`
	Winner      *string     `json:"winner"`
	Size        int         `json:"size"`
	Moves       []game.Move `json:"moves"`
}

// MarshalJSON writes the persisted record shape; a draw has "winner": null.
func (r GameRecord) MarshalJSON() ([]byte, error) {
	w := wireRecord{
		ID:          r.ID,
		Date:        FormatDate(r.Date),
		PlayerName:  r.PlayerName,
		HumanSymbol: string(r.HumanSymbol),
		Size:        r.Size,
		Moves:       r.Moves,
	}
	if r.Winner != game.None {
		winner := string(r.Winner)
		w.Winner = &winner
	}
	if w.Moves == nil {
		w.Moves = []game.Move{}
	}
	return json.Marshal(w)
}

func (r *GameRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	date, err := ParseDate(w.Date)
	if err != nil {
		return err
	}

	*r = GameRecord{
		ID:          w.ID,
		Date:        date,
		PlayerName:  w.PlayerName,
		HumanSymbol: game.PlayerMark(w.HumanSymbol),
		Winner:      game.None,
		Size:        w.Size,
		Moves:       w.Moves,
	}
	if w.Winner != nil {
		r.Winner = game.PlayerMark(*w.Winner)
	}
	return nil
}
