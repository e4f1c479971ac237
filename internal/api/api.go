// Package api serves the stored records over a read-only HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/model"
)

// ServiceName is reported by the health and index endpoints.
const ServiceName = "Schools API"

// Lister reads every stored record. store.Store satisfies it.
type Lister interface {
	List(ctx context.Context) ([]model.Record, error)
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Now            func() time.Time
}

// NewRouter builds the HTTP handler for the read API.
func NewRouter(records Lister, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	h := &handler{records: records, now: opts.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.index)
	r.Get("/health", h.health)
	r.Get("/api/schools", h.schools)
	return r
}

type handler struct {
	records Lister
	now     func() time.Time
}

func (h *handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": ServiceName + " is running",
		"endpoints": map[string]string{
			"all_schools": "/api/schools",
			"health":      "/health",
		},
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
		"service":   ServiceName,
	})
}

func (h *handler) schools(w http.ResponseWriter, r *http.Request) {
	recs, err := h.records.List(r.Context())
	if err != nil {
		zap.L().Error("api: list schools", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "failed to load schools data",
			"count": 0,
			"data":  []model.Record{},
		})
		return
	}
	if recs == nil {
		recs = []model.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
