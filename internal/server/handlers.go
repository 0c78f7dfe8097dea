package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/margdarshak/schemeseek/internal/engine"
	"github.com/margdarshak/schemeseek/internal/generation"
	"github.com/margdarshak/schemeseek/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("recommend request", zap.String("state", req.Profile.State), zap.Int("limit", req.Limit))
	resp, err := s.engine.Recommend(r.Context(), &req)
	if err != nil {
		s.respondEngineError(w, "recommend failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("chat request", zap.String("user_id", req.UserID))
	resp, err := s.engine.Chat(r.Context(), &req)
	if err != nil {
		s.respondEngineError(w, "chat failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleSchemeSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := s.config.Retrieval.KeywordLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	hits, err := s.engine.SearchSchemes(r.Context(), query, limit)
	if err != nil {
		s.respondEngineError(w, "scheme search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"hits": hits, "total": len(hits)})
}

func (s *Server) handleGetScheme(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scheme, err := s.engine.GetScheme(id)
	if err != nil {
		s.respondEngineError(w, "scheme lookup failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, scheme)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reload(r.Context()); err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondEngineError maps engine error kinds to HTTP status codes.
func (s *Server) respondEngineError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, engine.ErrMalformedQuery):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrSchemeNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrIndexNotReady):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, generation.ErrUpstream):
		s.logger.Error(msg, zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
