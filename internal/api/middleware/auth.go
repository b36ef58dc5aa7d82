package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tenishevR/tic-tac-toe-web/internal/api/response"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/service"
)

const usernameKey = "auth.username"

// TokenParser resolves a bearer token to a username.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// OptionalAuth accepts requests without credentials. A bearer token (header, or the
// "token" query parameter for websockets) must be valid; its username is stored on
// the context.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			token = c.Query("token")
		}
		if token == "" {
			c.Next()
			return
		}

		username, err := tokens.ParseToken(token)
		if err != nil {
			response.FromError(c, service.ErrInvalidToken)
			c.Abort()
			return
		}
		c.Set(usernameKey, username)
		c.Next()
	}
}

// Username returns the authenticated username, or "" for anonymous requests.
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}
