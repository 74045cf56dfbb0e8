// Package http exposes a Parley engine over a small JSON API: one route to
// post turns, plus conversation inspection and teardown. Rendering is the
// client's job; responses carry template ids, text fallbacks and data.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/parley/pkg/domain"
)

// Engine is the subset of the Parley facade the transport needs.
type Engine interface {
	ProcessTurn(ctx context.Context, conversationID string, turn domain.Turn) ([]domain.Activity, error)
	Inspect(ctx context.Context, conversationID string) (*domain.State, error)
	EndConversation(ctx context.Context, conversationID string) error
}

// Server handles the HTTP surface for one engine.
type Server struct {
	engine  Engine
	logger  *slog.Logger
	version string
	metrics http.Handler
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version string reported by /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithMetrics mounts a metrics handler (typically promhttp.Handler()) at
// /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// TurnRequest is the POST turns body. Type defaults to "message".
type TurnRequest struct {
	Type   string         `json:"type,omitempty"`
	Text   string         `json:"text,omitempty"`
	Value  map[string]any `json:"value,omitempty"`
	Locale string         `json:"locale,omitempty"`
}

// TurnResponse carries the replies for one processed turn.
type TurnResponse struct {
	ConversationID string            `json:"conversation_id"`
	Replies        []domain.Activity `json:"replies"`
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine:  engine,
		logger:  slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Post("/conversations", s.createConversation)
	r.Route("/conversations/{conversationID}", func(r chi.Router) {
		r.Post("/turns", s.postTurn)
		r.Get("/", s.getConversation)
		r.Delete("/", s.deleteConversation)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// createConversation mints a fresh conversation id. State is materialized
// lazily on the first turn.
func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{
		"conversation_id": uuid.NewString(),
	})
}

func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var body TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("turn: invalid request body", "err", err)
		return
	}

	turn := domain.Turn{
		Type:   domain.ActivityType(body.Type),
		Text:   body.Text,
		Value:  body.Value,
		Locale: body.Locale,
	}
	if turn.Type == "" {
		turn.Type = domain.ActivityMessage
	}

	replies, err := s.engine.ProcessTurn(r.Context(), conversationID, turn)
	if err != nil {
		http.Error(w, fmt.Sprintf("Turn error: %v", err), http.StatusInternalServerError)
		s.logger.Error("turn failed", "conversation_id", conversationID, "err", err)
		return
	}
	if replies == nil {
		replies = []domain.Activity{}
	}

	writeJSON(w, http.StatusOK, TurnResponse{
		ConversationID: conversationID,
		Replies:        replies,
	})
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	state, err := s.engine.Inspect(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Inspect error: %v", err), http.StatusInternalServerError)
		s.logger.Error("inspect failed", "conversation_id", conversationID, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	if err := s.engine.EndConversation(r.Context(), conversationID); err != nil && !errors.Is(err, domain.ErrConversationNotFound) {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("delete failed", "conversation_id", conversationID, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "parley-http",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
