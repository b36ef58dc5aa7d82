package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/tenishevR/tic-tac-toe-web/internal/hub"
)

const (
	heartbeatInterval = 10 * time.Second
	writeWait         = 5 * time.Second
)

var tracer = otel.Tracer("room")

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// GameHub is the part of the hub a connection drives.
type GameHub interface {
	StartGame(ctx context.Context, clientID, playerName string, size int) (hub.View, error)
	Move(ctx context.Context, clientID string, row, col int) (hub.View, error)
	Subscribe(ctx context.Context, clientID string) (*hub.Subscription, error)
	Unsubscribe(sub *hub.Subscription)
	BeginReplay(ctx context.Context, clientID string) (context.Context, func(), error)
}

// Room binds one client's websocket to its game in the hub.
type Room struct {
	ClientID   string
	PlayerName string
	conn       Connection
	hub        GameHub
	writeMu    sync.Mutex
}

// NewRoom creates a room for clientID. playerName is the default name used when a
// start message carries none.
func NewRoom(clientID, playerName string, conn Connection, h GameHub) *Room {
	return &Room{
		ClientID:   clientID,
		PlayerName: playerName,
		conn:       conn,
		hub:        h,
	}
}

// Serve pushes game updates to the client and handles its messages until the
// connection fails or ctx is cancelled.
func (r *Room) Serve(ctx context.Context) error {
	sub, err := r.hub.Subscribe(ctx, r.ClientID)
	if err != nil {
		r.conn.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.writePump(ctx, sub)
	}()
	go func() {
		defer wg.Done()
		// Unblocks ReadPump on shutdown.
		<-ctx.Done()
		r.conn.Close()
	}()

	r.ReadPump(ctx)

	cancel()
	r.hub.Unsubscribe(sub)
	wg.Wait()
	return nil
}

// writePump forwards hub views and keeps the connection alive with pings.
func (r *Room) writePump(ctx context.Context, sub *hub.Subscription) {
	pingTicker := time.NewTicker(heartbeatInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case v, ok := <-sub.Updates():
			if !ok {
				return
			}
			r.sendView(ctx, v)

		case <-pingTicker.C:
			if err := r.write(websocket.PingMessage, nil); err != nil {
				slog.WarnContext(ctx, "Failed to send ping, assuming disconnect", "client.id", r.ClientID, "error", err)
				r.conn.Close()
				return
			}
		}
	}
}

func (r *Room) write(messageType int, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if wc, ok := r.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		_ = wc.SetWriteDeadline(time.Now().Add(writeWait))
	}
	return r.conn.WriteMessage(messageType, data)
}
