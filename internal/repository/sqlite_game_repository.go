package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/record"
)

type gameRow struct {
	ID          int64          `db:"id"`
	Date        string         `db:"date"`
	PlayerName  string         `db:"player_name"`
	HumanSymbol string         `db:"human_symbol"`
	Winner      sql.NullString `db:"winner"`
	Size        int            `db:"size"`
	Moves       string         `db:"moves"`
}

func (row *gameRow) toRecord() (*record.GameRecord, error) {
	date, err := record.ParseDate(row.Date)
	if err != nil {
		return nil, err
	}

	var moves []game.Move
	if err := json.Unmarshal([]byte(row.Moves), &moves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moves of game %d: %w", row.ID, err)
	}

	rec := &record.GameRecord{
		ID:          row.ID,
		Date:        date,
		PlayerName:  row.PlayerName,
		HumanSymbol: game.PlayerMark(row.HumanSymbol),
		Winner:      game.None,
		Size:        row.Size,
		Moves:       moves,
	}
	if row.Winner.Valid {
		rec.Winner = game.PlayerMark(row.Winner.String)
	}
	return rec, nil
}

type sqliteGameRecordRepository struct {
	db *sqlx.DB
}

// NewSQLiteGameRecordRepository creates a GameRecordRepository on the games table.
// The schema is created by db.InitializeDB.
func NewSQLiteGameRecordRepository(db *sqlx.DB) GameRecordRepository {
	return &sqliteGameRecordRepository{db: db}
}

// Save inserts the record; SQLite's AUTOINCREMENT assigns the id.
func (r *sqliteGameRecordRepository) Save(ctx context.Context, rec *record.GameRecord) (int64, error) {
	ctx, span := tracer.Start(ctx, "GameRecordRepository.Save", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
	))
	defer span.End()

	movesJSON, err := json.Marshal(rec.Moves)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to marshal moves: %w", ErrStorage, err)
	}

	var winner sql.NullString
	if rec.Winner != game.None {
		winner = sql.NullString{String: string(rec.Winner), Valid: true}
	}

	query := `INSERT INTO games (date, player_name, human_symbol, winner, size, moves) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		record.FormatDate(rec.Date), rec.PlayerName, string(rec.HumanSymbol), winner, rec.Size, string(movesJSON))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return 0, fmt.Errorf("%w: failed to insert game: %w", ErrStorage, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "LastInsertId failed")
		return 0, fmt.Errorf("%w: failed to read game id: %w", ErrStorage, err)
	}
	span.SetAttributes(attribute.Int64("record.id", id))
	return id, nil
}

// List returns all games, newest first.
func (r *sqliteGameRecordRepository) List(ctx context.Context) ([]*record.GameRecord, error) {
	ctx, span := tracer.Start(ctx, "GameRecordRepository.List", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
	))
	defer span.End()

	var rows []gameRow
	query := `SELECT id, date, player_name, human_symbol, winner, size, moves FROM games ORDER BY date DESC, id DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Select failed")
		return nil, fmt.Errorf("%w: failed to list games: %w", ErrStorage, err)
	}

	records := make([]*record.GameRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		records = append(records, rec)
	}
	span.SetAttributes(attribute.Int("record.count", len(records)))
	return records, nil
}

// FetchByID retrieves one game.
func (r *sqliteGameRecordRepository) FetchByID(ctx context.Context, id int64) (*record.GameRecord, error) {
	ctx, span := tracer.Start(ctx, "GameRecordRepository.FetchByID", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.Int64("record.id", id),
	))
	defer span.End()

	var row gameRow
	query := `SELECT id, date, player_name, human_symbol, winner, size, moves FROM games WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Get failed")
		return nil, fmt.Errorf("%w: failed to get game %d: %w", ErrStorage, id, err)
	}

	rec, err := row.toRecord()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return rec, nil
}
