package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tenishevR/tic-tac-toe-web/internal/api/controller"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/middleware"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/response"
	"github.com/tenishevR/tic-tac-toe-web/internal/replay"
	"github.com/tenishevR/tic-tac-toe-web/internal/room"
)

var tracer = otel.Tracer("server")

// Handlers groups the HTTP controllers.
type Handlers struct {
	Users   *controller.UserController
	Games   *controller.GameController
	Records *controller.RecordController
}

type Server struct {
	hub      room.GameHub
	records  room.RecordFetcher
	driver   *replay.Driver
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

// NewServer wires the routes. tokens resolves optional bearer tokens to usernames.
func NewServer(h room.GameHub, records room.RecordFetcher, driver *replay.Driver, tokens middleware.TokenParser, handlers Handlers) *Server {
	s := &Server{
		hub:     h,
		records: records,
		driver:  driver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestMetrics(), requestLogger())

	engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api", middleware.OptionalAuth(tokens))
	{
		users := api.Group("/users")
		users.POST("/register", handlers.Users.Register)
		users.POST("/login", handlers.Users.Login)
		users.POST("/guest", handlers.Users.GuestLogin)
		users.GET("/me", handlers.Users.Me)

		games := api.Group("/games")
		games.POST("", handlers.Games.Start)
		games.GET("/:clientId", handlers.Games.Get)
		games.POST("/:clientId/moves", handlers.Games.Move)

		records := api.Group("/records")
		records.GET("", handlers.Records.List)
		records.GET("/:id", handlers.Records.Get)
		records.GET("/:id/replay", handlers.Records.Replay)
	}

	ws := engine.Group("/ws", middleware.OptionalAuth(tokens))
	ws.GET("/play", s.handlePlay)
	ws.GET("/replay/:id", s.handleReplay)

	s.engine = engine
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// upgrade switches the request to a websocket for the client named by the
// clientId query parameter, or a fresh id when none is given.
func (s *Server) upgrade(c *gin.Context, spanName string) (*websocket.Conn, string, bool) {
	_, span := tracer.Start(c.Request.Context(), spanName, trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	clientID := c.Query("clientId")
	if clientID == "" {
		clientID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("client.id", clientID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "Failed to upgrade connection", "client.id", clientID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return nil, "", false
	}
	return conn, clientID, true
}

// handlePlay serves live games: start/move messages in, update messages out.
func (s *Server) handlePlay(c *gin.Context) {
	conn, clientID, ok := s.upgrade(c, "server.handlePlay")
	if !ok {
		return
	}

	r := room.NewRoom(clientID, middleware.Username(c), conn, s.hub)
	if err := r.Serve(c.Request.Context()); err != nil {
		slog.WarnContext(c.Request.Context(), "Play connection ended with error", "client.id", clientID, "error", err)
	}
}

// handleReplay streams one stored game.
func (s *Server) handleReplay(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorResponse(c, http.StatusBadRequest, "invalid record id")
		return
	}

	conn, clientID, ok := s.upgrade(c, "server.handleReplay")
	if !ok {
		return
	}

	r := room.NewRoom(clientID, "", conn, s.hub)
	if err := r.ServeReplay(c.Request.Context(), s.records, s.driver, id); err != nil {
		slog.InfoContext(c.Request.Context(), "Replay ended", "client.id", clientID, "record.id", id, "error", err)
	}
}
