package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	once sync.Once

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_backend_requests_total",
			Help: "Backend calls by operation and outcome (ok/transport/status/validation/rejected).",
		},
		[]string{"op", "outcome"},
	)

	backendLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docchat_backend_request_duration_ms",
			Help:    "Backend call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000, 60000},
		},
		[]string{"op"},
	)

	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_uploads_total",
			Help: "Upload submissions by quality and outcome.",
		},
		[]string{"quality", "outcome"},
	)

	uploadedFiles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docchat_uploaded_files_total",
			Help: "Files sent in successful uploads.",
		},
	)

	chatSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_chat_sends_total",
			Help: "Chat sends by outcome (ok/failed/rejected).",
		},
		[]string{"outcome"},
	)

	tokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_tokens_total",
			Help: "Tokens reported by the backend, by kind (input/output/total).",
		},
		[]string{"kind"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			backendRequests, backendLatencyMs,
			uploads, uploadedFiles,
			chatSends, tokens,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Backend helpers --------

func ObserveBackendCall(op, outcome string, elapsed time.Duration) {
	backendRequests.WithLabelValues(norm(op), norm(outcome)).Inc()
	backendLatencyMs.WithLabelValues(norm(op)).Observe(float64(elapsed.Milliseconds()))
}

// -------- Flow helpers --------

func ObserveUpload(quality string, files int, success bool) {
	outcome := "failed"
	if success {
		outcome = "ok"
		uploadedFiles.Add(float64(files))
	}
	uploads.WithLabelValues(norm(quality), outcome).Inc()
}

func ObserveChatSend(outcome string) {
	chatSends.WithLabelValues(norm(outcome)).Inc()
}

func ObserveTokens(input, output, total int) {
	tokens.WithLabelValues("input").Add(float64(input))
	tokens.WithLabelValues("output").Add(float64(output))
	tokens.WithLabelValues("total").Add(float64(total))
}

// Handler mounts the prometheus exposition endpoint on path
func Handler(path string) http.Handler {
	r := chi.NewRouter()
	r.Handle(path, promhttp.Handler())
	return r
}

// Serve exposes metrics on addr until ctx is done
func Serve(ctx context.Context, addr, path string) error {
	MustRegister()

	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Str("path", path).Msg("Serving metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
