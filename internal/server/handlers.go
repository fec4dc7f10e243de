package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/yoyaku/internal/engine"
	"github.com/hyperjump/yoyaku/internal/fileid"
	"github.com/hyperjump/yoyaku/internal/models"
	"github.com/hyperjump/yoyaku/internal/ranking"
	"github.com/hyperjump/yoyaku/internal/storage"
)

const (
	maxBodyBytes     = 10 << 20
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("summarize request",
		zap.Int("documents", len(req.Documents)),
		zap.String("strategy", req.Strategy),
		zap.Int("limit", req.Limit))
	resp, err := s.engine.Summarize(r.Context(), &req)
	if err != nil {
		s.respondErr(w, "summarize failed", err)
		return
	}
	status := http.StatusOK
	if resp.ID != "" {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	ctx := r.Context()
	recs, err := s.storage.ListSummaries(ctx, offset, limit)
	if err != nil {
		s.respondErr(w, "list summaries failed", err)
		return
	}
	total, err := s.storage.CountSummaries(ctx)
	if err != nil {
		s.respondErr(w, "count summaries failed", err)
		return
	}
	if recs == nil {
		recs = []*models.SummaryRecord{}
	}
	s.respondJSON(w, http.StatusOK, &models.SummaryListResponse{
		Summaries: recs,
		Total:     int(total),
		Offset:    offset,
		Limit:     limit,
	})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// handleGetSummary accepts a summary ID or the source ID of a watched file.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		rec *models.SummaryRecord
		err error
	)
	if fileid.IsSourceID(id) {
		rec, err = s.storage.GetSummaryBySource(r.Context(), id)
	} else {
		rec, err = s.storage.GetSummary(r.Context(), id)
	}
	if err != nil {
		s.respondErr(w, "get summary failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete summary request", zap.String("id", id))
	if err := s.storage.DeleteSummary(r.Context(), id); err != nil {
		s.respondErr(w, "delete summary failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, engine.Strategies())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.Status(r.Context())
	if err != nil {
		s.respondErr(w, "status failed", err)
		return
	}
	if s.watch != nil {
		status.Watching = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, ranking.ErrMissingAnnotation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoStorage):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
