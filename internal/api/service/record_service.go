package service

import (
	"context"
	"log/slog"

	"github.com/tenishevR/tic-tac-toe-web/internal/record"
	"github.com/tenishevR/tic-tac-toe-web/internal/replay"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository"
)

// RecordService exposes the game history.
type RecordService interface {
	List(ctx context.Context) ([]*record.GameRecord, error)
	Fetch(ctx context.Context, id int64) (*record.GameRecord, error)
	// Replay returns every frame of record id, or replay.ErrCorruptRecord.
	Replay(ctx context.Context, id int64) ([]replay.Frame, error)
}

type recordService struct {
	records repository.GameRecordRepository
	driver  *replay.Driver
}

// NewRecordService creates a new RecordService.
func NewRecordService(records repository.GameRecordRepository, driver *replay.Driver) RecordService {
	return &recordService{records: records, driver: driver}
}

func (s *recordService) List(ctx context.Context) ([]*record.GameRecord, error) {
	return s.records.List(ctx)
}

func (s *recordService) Fetch(ctx context.Context, id int64) (*record.GameRecord, error) {
	return s.records.FetchByID(ctx, id)
}

func (s *recordService) Replay(ctx context.Context, id int64) ([]replay.Frame, error) {
	rec, err := s.records.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	frames, err := s.driver.Replay(rec)
	if err != nil {
		slog.WarnContext(ctx, "Record cannot be replayed", "record.id", id, "error", err)
		return nil, err
	}
	return frames, nil
}
