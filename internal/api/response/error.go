package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenishevR/tic-tac-toe-web/internal/api/service"
	"github.com/tenishevR/tic-tac-toe-web/internal/game"
	"github.com/tenishevR/tic-tac-toe-web/internal/hub"
	"github.com/tenishevR/tic-tac-toe-web/internal/replay"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository"
)

// StatusFor maps a domain error to its HTTP status and client-facing message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidSize), errors.Is(err, game.ErrOutOfBounds), errors.Is(err, game.ErrInvalidMark):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, game.ErrGameAlreadyFinished), errors.Is(err, game.ErrIllegalMove):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, hub.ErrNoActiveGame), errors.Is(err, repository.ErrRecordNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, replay.ErrCorruptRecord):
		return http.StatusUnprocessableEntity, "record unavailable"
	case errors.Is(err, hub.ErrHubStopped):
		return http.StatusServiceUnavailable, "service is shutting down"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// FromError writes err as an error response with the mapped status.
func FromError(c *gin.Context, err error) {
	code, message := StatusFor(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	ErrorResponse(c, code, message)
}
