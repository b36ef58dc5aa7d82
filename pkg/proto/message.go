package proto

import (
	"github.com/tenishevR/tic-tac-toe-web/internal/hub"
	"github.com/tenishevR/tic-tac-toe-web/internal/replay"
)

// Client message types.
const (
	TypeStart = "start"
	TypeMove  = "move"
)

// Server message types.
const (
	TypeUpdate     = "update"
	TypeError      = "error"
	TypeReplayStep = "replay_step"
	TypeReplayDone = "replay_done"
)

// ClientToServerMessage represents a message from the client to the server.
// start carries Size (and optionally PlayerName); move carries Position as [row, col].
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=start move"`
	Size       int    `json:"size,omitempty" validate:"omitempty,min=3,max=10"`
	PlayerName string `json:"playerName,omitempty" validate:"max=40"`
	Position   []int  `json:"position,omitempty" validate:"omitempty,len=2,dive,min=0"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type     string        `json:"type" validate:"required"`
	Reason   string        `json:"reason,omitempty"`
	Game     *hub.View     `json:"game,omitempty"`
	Frame    *replay.Frame `json:"frame,omitempty"`
	RecordID int64         `json:"recordId,omitempty"`
}
