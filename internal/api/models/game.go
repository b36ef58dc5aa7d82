package models

// StartGameRequest starts a new game for a client.
type StartGameRequest struct {
	ClientID   string `json:"clientId" binding:"required,max=64"`
	Size       int    `json:"size" binding:"required,min=3,max=10"`
	PlayerName string `json:"playerName" binding:"max=40"`
}

// MoveRequest is a human move. Row and Col are pointers so that 0 passes "required".
type MoveRequest struct {
	Row *int `json:"row" binding:"required,min=0"`
	Col *int `json:"col" binding:"required,min=0"`
}
