package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenishevR/tic-tac-toe-web/internal/api/middleware"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/models"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/response"
	"github.com/tenishevR/tic-tac-toe-web/internal/hub"
)

// GameHub runs the games behind the HTTP API.
type GameHub interface {
	StartGame(ctx context.Context, clientID, playerName string, size int) (hub.View, error)
	Move(ctx context.Context, clientID string, row, col int) (hub.View, error)
	View(ctx context.Context, clientID string) (hub.View, error)
}

// GameController handles game HTTP requests.
type GameController struct {
	hub GameHub
}

// NewGameController creates a new GameController.
func NewGameController(h GameHub) *GameController {
	return &GameController{hub: h}
}

// Start begins a new game, replacing the client's current one.
func (gc *GameController) Start(c *gin.Context) {
	var req models.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	name := req.PlayerName
	if name == "" {
		name = middleware.Username(c)
	}

	view, err := gc.hub.StartGame(c.Request.Context(), req.ClientID, name, req.Size)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedResponse(c, view)
}

// Get returns the client's current game.
func (gc *GameController) Get(c *gin.Context) {
	view, err := gc.hub.View(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Move plays the human's move. The opponent answers asynchronously.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := gc.hub.Move(c.Request.Context(), c.Param("clientId"), *req.Row, *req.Col)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}
