package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/tenishevR/tic-tac-toe-web/internal/record"
)

//go:generate mockgen -source=game_repository.go -destination=mocks/mock_game_repository.go -package=mocks

var tracer = otel.Tracer("repository.game")

var (
	// ErrStorage wraps every backend failure.
	ErrStorage = errors.New("storage error")
	// ErrRecordNotFound is a normal outcome of FetchByID, never wrapped in ErrStorage.
	ErrRecordNotFound = errors.New("game record not found")
)

// GameRecordRepository persists completed games. Records are immutable once saved.
type GameRecordRepository interface {
	// Save stores rec and returns its newly assigned id. rec.ID is ignored.
	Save(ctx context.Context, rec *record.GameRecord) (int64, error)
	// List returns every record, most recent date first, ties by descending id.
	List(ctx context.Context) ([]*record.GameRecord, error)
	// FetchByID returns ErrRecordNotFound when no record has the id.
	FetchByID(ctx context.Context, id int64) (*record.GameRecord, error)
}
