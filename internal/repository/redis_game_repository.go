package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/record"
)

const (
	recordSequenceKey = "records:seq"
	recordsByDateKey  = "records:by_date"
)

func recordKey(id int64) string {
	return fmt.Sprintf("record:%d", id)
}

type redisGameRecordRepository struct {
	rdb *redis.Client
}

// NewRedisGameRecordRepository creates a Redis-based GameRecordRepository.
// Ids come from INCR on a sequence key; a sorted set scored by date indexes the records.
func NewRedisGameRecordRepository(rdb *redis.Client) GameRecordRepository {
	return &redisGameRecordRepository{rdb: rdb}
}

// Save assigns the next id and stores the record as JSON.
func (r *redisGameRecordRepository) Save(ctx context.Context, rec *record.GameRecord) (int64, error) {
	ctx, span := tracer.Start(ctx, "GameRecordRepository.Save", trace.WithAttributes(
		attribute.String("db.system", "redis"),
	))
	defer span.End()

	id, err := r.rdb.Incr(ctx, recordSequenceKey).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to allocate id")
		return 0, fmt.Errorf("%w: failed to allocate record id: %w", ErrStorage, err)
	}

	stored := *rec
	stored.ID = id
	recordJSON, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to marshal record: %w", ErrStorage, err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, recordKey(id), recordJSON, 0)
	pipe.ZAdd(ctx, recordsByDateKey, &redis.Z{
		Score:  float64(stored.Date.UnixMilli()),
		Member: strconv.FormatInt(id, 10),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store record")
		return 0, fmt.Errorf("%w: failed to store record %d: %w", ErrStorage, id, err)
	}

	span.SetAttributes(attribute.Int64("record.id", id))
	return id, nil
}

// List loads every indexed record, newest first.
func (r *redisGameRecordRepository) List(ctx context.Context) ([]*record.GameRecord, error) {
	ctx, span := tracer.Start(ctx, "GameRecordRepository.List", trace.WithAttributes(
		attribute.String("db.system", "redis"),
	))
	defer span.End()

	ids, err := r.rdb.ZRevRange(ctx, recordsByDateKey, 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read index")
		return nil, fmt.Errorf("%w: failed to read record index: %w", ErrStorage, err)
	}
	if len(ids) == 0 {
		return []*record.GameRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, member := range ids {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: bad member %q in record index: %w", ErrStorage, member, err)
		}
		keys[i] = recordKey(id)
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load records")
		return nil, fmt.Errorf("%w: failed to load records: %w", ErrStorage, err)
	}

	records := make([]*record.GameRecord, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Indexed but missing; skip rather than fail the whole listing.
			continue
		}
		var rec record.GameRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: failed to unmarshal %s: %w", ErrStorage, keys[i], err)
		}
		records = append(records, &rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})

	span.SetAttributes(attribute.Int("record.count", len(records)))
	return records, nil
}

// FetchByID retrieves one record.
func (r *redisGameRecordRepository) FetchByID(ctx context.Context, id int64) (*record.GameRecord, error) {
	ctx, span := tracer.Start(ctx, "GameRecordRepository.FetchByID", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.Int64("record.id", id),
	))
	defer span.End()

	response, err := r.rdb.Get(ctx, recordKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Get failed")
		return nil, fmt.Errorf("%w: failed to get record %d: %w", ErrStorage, id, err)
	}

	var rec record.GameRecord
	if err := json.Unmarshal([]byte(response), &rec); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal record %d: %w", ErrStorage, id, err)
	}
	return &rec, nil
}
