package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenishevR/tic-tac-toe-web/internal/config"
)

func TestInitOtel_Disabled(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), config.Telemetry{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitOtel_EnabledWithoutCollector(t *testing.T) {
	ctx := context.Background()
	// grpc.NewClient connects lazily, so setup succeeds without a collector.
	shutdown, err := InitOtel(ctx, config.Telemetry{
		Enabled:     true,
		Endpoint:    "127.0.0.1:1",
		ServiceName: "tic-tac-toe-test",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_ = shutdown(ctx)
}
