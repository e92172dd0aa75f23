package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	v1 "github.com/SulimanRohany/deen-bridge-backend/cmd/api/router/v1"
	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/config"
	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/database"
	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	queueadapter "github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/queue/adapter"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	chatadapter "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/adapter"
	notiftask "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/task"
	notifadapter "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/adapter"
	userdir "github.com/SulimanRohany/deen-bridge-backend/internal/repository/adapter"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.Connect(ctx, cfg.DBURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if cfg.RedisURL == "" {
		log.Fatal().Msg("REDIS_URL is required (task queue backend)")
	}

	// Pub/sub backbone for every realtime channel.
	var fab fabric.Fabric
	switch cfg.Fabric {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		fab, err = fabric.NewRedisFabric(ctx, cfg.RedisURL, log)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("redis fabric init failed")
		}
	default:
		fab = fabric.NewLocalFabric()
	}
	defer fab.Close()

	qClient, err := queueadapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("queue client init failed")
	}
	defer qClient.Close()

	msgRepo := chatadapter.NewPgMessageRepository(pool)
	notifRepo := notifadapter.NewPgNotificationRepository(pool)
	authn := auth.NewAuthenticator(cfg.SecretKey, userdir.NewPgUserDirectory(pool), log)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// In-process workers pick up notification fan-out tasks; a dedicated
	// worker deployment can run the same binary pointed at the same Redis.
	qServer, err := queueadapter.NewAsynqServer(cfg.RedisURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("queue server init failed")
	}
	notiftask.RegisterDeliverNotificationTask(qServer, notifRepo, fab, log)
	go func() {
		if err := qServer.Run(rootCtx); err != nil {
			log.Error().Err(err).Msg("queue server stopped")
		}
	}()

	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, v1.Deps{
		Messages:      msgRepo,
		Notifications: notifRepo,
		Fabric:        fab,
		Queue:         qClient,
		Authn:         authn,
		Log:           log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("fabric", cfg.Fabric).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// requestLogger emits one structured line per HTTP request. Websocket
// upgrades are logged once at upgrade time.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
