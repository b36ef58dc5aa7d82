package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/tenishevR/tic-tac-toe-web/internal/api/controller"
	apirepository "github.com/tenishevR/tic-tac-toe-web/internal/api/repository"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/service"
	"github.com/tenishevR/tic-tac-toe-web/internal/config"
	"github.com/tenishevR/tic-tac-toe-web/internal/db"
	"github.com/tenishevR/tic-tac-toe-web/internal/events"
	"github.com/tenishevR/tic-tac-toe-web/internal/hub"
	"github.com/tenishevR/tic-tac-toe-web/internal/logger"
	"github.com/tenishevR/tic-tac-toe-web/internal/replay"
	"github.com/tenishevR/tic-tac-toe-web/internal/repository"
	"github.com/tenishevR/tic-tac-toe-web/internal/server"
	"github.com/tenishevR/tic-tac-toe-web/internal/telemetry"
)

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to the YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	if err := logger.Init(cfg.LogLevel, cfg.Telemetry.Enabled); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	// Initialize SQLite DB. Users always live here; games too unless redis storage is selected.
	DB, err := db.SQLiteConnect(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to get sqlite db connection: %v", err)
	}
	defer DB.Close()
	if err := db.InitializeDB(ctx, DB); err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}

	// Initialize Redis
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
	}

	// Create repositories
	var gameRepo repository.GameRecordRepository
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		gameRepo = repository.NewRedisGameRecordRepository(rdb)
	default:
		gameRepo = repository.NewSQLiteGameRecordRepository(DB)
	}
	userRepo := apirepository.NewUserRepository(DB)

	publisher := events.NewNopPublisher()
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb)
	}

	// Create hub
	gameHub, err := hub.NewHub(gameRepo,
		hub.WithDelays(cfg.Game.OpponentDelay, cfg.Game.OpeningDelay),
		hub.WithSaveTimeout(cfg.Game.SaveTimeout),
		hub.WithIdleTimeout(cfg.Game.IdleTimeout, time.Minute),
		hub.WithPublisher(publisher),
	)
	if err != nil {
		log.Fatalf("failed to create hub: %v", err)
	}
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		gameHub.Run(ctx)
	}()

	// Create services
	driver := replay.NewDriver(cfg.Game.ReplayInterval)
	userService := service.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	recordService := service.NewRecordService(gameRepo, driver)

	// Create the Gin-based server
	srv := server.NewServer(gameHub, gameRepo, driver, userService, server.Handlers{
		Users:   controller.NewUserController(userService),
		Games:   controller.NewGameController(gameHub),
		Records: controller.NewRecordController(recordService),
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
		// Websocket handlers outlive Shutdown; they stop when ctx is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr, "storage", cfg.Storage.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	select {
	case <-hubDone:
	case <-shutdownCtx.Done():
		slog.Warn("Hub did not stop in time")
	}

	slog.Info("Server exiting")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
