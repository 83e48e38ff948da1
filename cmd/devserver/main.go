// Command devserver runs a local document assistant backend that speaks the
// same HTTP contract as the real service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/api"
	"github.com/deon-gracias/rag/internal/api/middleware"
	"github.com/deon-gracias/rag/internal/config"
	"github.com/deon-gracias/rag/internal/logger"
	"github.com/deon-gracias/rag/internal/repository/redis"
	"github.com/deon-gracias/rag/internal/repository/sqlite"
)

func main() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if godotenv.Load(p) == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	closer, err := logger.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closer.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Path).
		Msg("Starting document assistant dev server")

	// Initialize database
	db, err := sqlite.NewDB(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := sqlite.RunMigrations(cfg.Database.MigrateURL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" && cfg.Server.RateLimit.RequestsPerMinute > 0 {
		redisClient, err := redis.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		limiter = redis.NewRateLimiter(redisClient, cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.Burst)
		log.Info().
			Int("requests_per_minute", cfg.Server.RateLimit.RequestsPerMinute).
			Int("burst", cfg.Server.RateLimit.Burst).
			Msg("Session rate limiting enabled")
	}

	// Initialize router
	router, err := api.NewRouter(cfg, db, limiter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Serving sessions on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down dev server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Dev server forced to shut down")
	}
}
