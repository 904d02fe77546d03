package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"guru-api/internal/db"
	"guru-api/internal/keys"
	"guru-api/internal/models"
)

const apiKeyHeader = "X-API-Key"

// KeyService guards and accounts access keys.
type KeyService interface {
	Authorize(ctx context.Context, keyString string) (*db.APIKey, error)
	Debit(ctx context.Context, key *db.APIKey) (int, error)
}

// Pipeline answers one normalized chat request.
type Pipeline interface {
	Answer(ctx context.Context, req models.ChatRequest) models.ChatResult
}

type Server struct {
	router *mux.Router
	keys   KeyService
	rag    Pipeline
}

func New(keySvc KeyService, rag Pipeline) *Server {
	s := &Server{
		router: mux.NewRouter(),
		keys:   keySvc,
		rag:    rag,
	}
	s.router.Use(loggingMiddleware)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/chat", s.handleChat).Methods("POST")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, err := s.keys.Authorize(ctx, r.Header.Get(apiKeyHeader))
	if err != nil {
		switch {
		case errors.Is(err, keys.ErrInvalidKey):
			writeError(w, http.StatusUnauthorized, "Invalid API Key")
		case errors.Is(err, keys.ErrKeyExpired):
			writeError(w, http.StatusForbidden, "API Key Expired")
		case errors.Is(err, keys.ErrNoCredits):
			writeError(w, http.StatusPaymentRequired, "Insufficient Credits")
		default:
			log.Error().Err(err).Msg("authorization failed")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := s.rag.Answer(ctx, req)

	var creditsLeft any
	switch {
	case key.IsUnlimited:
		creditsLeft = "Unlimited"
	case result.Generated:
		remaining, err := s.keys.Debit(ctx, key)
		if err != nil {
			// availability over accounting: the answer still goes out
			log.Error().Err(err).Int64("key_id", key.ID).Msg("credit debit failed")
			remaining = key.Credits
		}
		creditsLeft = remaining
	default:
		creditsLeft = key.Credits
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		QuestionInterpreted: result.Interpreted,
		Answer:              result.Answer,
		Image:               result.Image,
		CreditsLeft:         creditsLeft,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
