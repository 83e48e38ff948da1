package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/api/handler"
	customMiddleware "github.com/deon-gracias/rag/internal/api/middleware"
	"github.com/deon-gracias/rag/internal/config"
	"github.com/deon-gracias/rag/internal/llm"
	"github.com/deon-gracias/rag/internal/llm/echo"
	"github.com/deon-gracias/rag/internal/llm/ollama"
	"github.com/deon-gracias/rag/internal/metrics"
	"github.com/deon-gracias/rag/internal/repository/filestore"
	"github.com/deon-gracias/rag/internal/repository/sqlite"
	"github.com/deon-gracias/rag/internal/service"
)

// NewRouter creates and configures the HTTP router. A nil limiter leaves
// the session routes unlimited.
func NewRouter(cfg *config.Config, db *sqlite.DB, limiter customMiddleware.Limiter) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Initialize repositories
	sessionRepo := sqlite.NewSessionRepository(db.Conn)
	messageRepo := sqlite.NewMessageRepository(db.Conn)
	documentRepo := sqlite.NewDocumentRepository(db.Conn)

	store, err := filestore.New(cfg.Storage.DocumentsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.Provider)
	llmRouter.RegisterProvider(echo.NewProvider(nil))

	log.Info().Msgf("Initializing responders. Default: %s", cfg.LLM.Provider)

	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.Model, cfg.LLM.Ollama.Timeout))
	}

	if _, err := llmRouter.GetProvider(""); err != nil {
		return nil, fmt.Errorf("default responder unavailable: %w", err)
	}

	// Initialize services and handlers
	sessionService := service.NewSessionService(sessionRepo, messageRepo, documentRepo, store, llmRouter, cfg.LLM.Provider)
	sessionHandler := handler.NewSessionHandler(sessionService, cfg.Server.MaxUploadBytes)

	r.Get("/check_health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(db))
	r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(customMiddleware.RateLimit(limiter))
		}
		r.Mount("/session", sessionHandler.Routes())
	})

	if cfg.Metrics.Enabled {
		metrics.MustRegister()
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.Handler())
	}

	return r, nil
}
