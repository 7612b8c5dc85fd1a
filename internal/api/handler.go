package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/runtime-config/internal/docstore"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultPingTimeout = 2 * time.Second

// ConfigSource provides the effective client-public configuration.
type ConfigSource interface {
	PublicConfig() map[string]any
}

// StorePinger reports document store reachability for /health/db.
type StorePinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// Handler serves the runtime config and health endpoints.
type Handler struct {
	config ConfigSource
	store  StorePinger
	logger *zap.Logger

	clock       func() time.Time
	pingTimeout time.Duration
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithHandlerLogger sets the logger used for store health failures.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPingTimeout bounds the store ping issued by /health/db.
func WithPingTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.pingTimeout = timeout
		}
	}
}

// NewHandler constructs a Handler. A nil store is reported as disabled.
func NewHandler(config ConfigSource, store StorePinger, opts ...HandlerOption) *Handler {
	if store == nil {
		store = docstore.Disabled{}
	}
	h := &Handler{
		config:      config,
		store:       store,
		logger:      zap.NewNop(),
		pingTimeout: defaultPingTimeout,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStoreHealth always answers 200; the status field carries the outcome.
func (h *Handler) handleStoreHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
	defer cancel()

	resp := storeHealthResponse{
		Store:     h.store.Name(),
		Timestamp: h.clock(),
	}
	err := h.store.Ping(ctx)
	switch {
	case err == nil:
		resp.Status = "ok"
	case errors.Is(err, docstore.ErrStoreDisabled):
		resp.Status = "disabled"
	default:
		h.logger.Warn("document store ping failed",
			zap.String("store", resp.Store),
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		resp.Status = "error"
		resp.Details = storePingFailed
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	var public map[string]any
	if h.config != nil {
		public = h.config.PublicConfig()
	}
	if public == nil {
		public = map[string]any{}
	}
	writeJSON(w, http.StatusOK, configResponse{Config: public})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type configResponse struct {
	Config map[string]any `json:"config"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// storePingFailed is the client-facing detail; the cause is only logged.
const storePingFailed = "store ping failed"

type storeHealthResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}
