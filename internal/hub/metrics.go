package hub

import (
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	gamesStarted  metric.Int64Counter
	gamesFinished metric.Int64Counter
	recordsSaved  metric.Int64Counter
	saveFailures  metric.Int64Counter

	sessionsEvicted metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	var (
		m   metrics
		err error
	)
	if m.gamesStarted, err = meter.Int64Counter("games.started", metric.WithDescription("Games started")); err != nil {
		return nil, err
	}
	if m.gamesFinished, err = meter.Int64Counter("games.finished", metric.WithDescription("Games that reached a terminal state")); err != nil {
		return nil, err
	}
	if m.recordsSaved, err = meter.Int64Counter("records.saved", metric.WithDescription("Game records stored")); err != nil {
		return nil, err
	}
	if m.saveFailures, err = meter.Int64Counter("records.save_failures", metric.WithDescription("Game records that could not be stored")); err != nil {
		return nil, err
	}
	if m.sessionsEvicted, err = meter.Int64Counter("sessions.evicted", metric.WithDescription("Game sessions dropped after disconnect or idleness")); err != nil {
		return nil, err
	}
	return &m, nil
}
