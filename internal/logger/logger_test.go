package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: "", want: slog.LevelInfo},
		{name: "warning", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMultiHandler_RespectsEachLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("session.id", "s-1")

	log.InfoContext(context.Background(), "Game started")
	log.WarnContext(context.Background(), "Rejected move")

	assert.Contains(t, debugBuf.String(), "Game started")
	assert.Contains(t, debugBuf.String(), "session.id=s-1")
	assert.Contains(t, debugBuf.String(), "Rejected move")
	assert.NotContains(t, warnBuf.String(), "Game started")
	assert.Contains(t, warnBuf.String(), "Rejected move")
}

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn, false)

	log.Info("hidden")
	log.Error("shown", "record.id", 7)

	require.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "record.id=7")
}
