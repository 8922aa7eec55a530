package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ixink/uiu-student-bot/internal/profile"
	"github.com/ixink/uiu-student-bot/internal/record"
)

type textResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be an integer")
		return
	}

	text, err := s.svc.Recommend(r.Context(), userID, r.URL.Query().Get("term"))
	if err != nil {
		s.log.Error("composing recommendations failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	kind, err := record.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// user_id is optional here: anonymous lookups get unpersonalized results.
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)

	text, err := s.svc.Lookup(r.Context(), userID, kind, r.URL.Query().Get("term"))
	if err != nil {
		s.log.Error("lookup failed", zap.String("kind", string(kind)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user id must be an integer")
		return
	}

	p, err := s.profiles.Get(userID)
	if errors.Is(err, profile.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		s.log.Error("loading profile failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user id must be an integer")
		return
	}

	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "malformed profile body")
		return
	}
	p.UserID = userID

	if err := s.profiles.Set(p); err != nil {
		if errors.Is(err, profile.ErrInvalid) {
			writeError(w, http.StatusBadRequest,
				"invalid profile: department, a positive year and at least one interest are required")
			return
		}
		s.log.Error("saving profile failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddSnippet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user id must be an integer")
		return
	}

	var sn profile.Snippet
	if err := json.NewDecoder(r.Body).Decode(&sn); err != nil {
		writeError(w, http.StatusBadRequest, "malformed snippet body")
		return
	}

	if err := s.profiles.AddSnippet(userID, sn); err != nil {
		if errors.Is(err, profile.ErrInvalid) {
			writeError(w, http.StatusBadRequest, "a snippet needs a description and a body")
			return
		}
		s.log.Error("saving snippet failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, sn)
}

func (s *Server) handleListSnippets(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user id must be an integer")
		return
	}

	snippets, err := s.profiles.Snippets(userID, r.URL.Query().Get("tag"))
	if err != nil {
		s.log.Error("listing snippets failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if snippets == nil {
		snippets = []profile.Snippet{}
	}
	writeJSON(w, http.StatusOK, snippets)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
