package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clipsight/internal/analysis"
	"clipsight/internal/extract"
	"clipsight/internal/logging"
	"clipsight/internal/timeline"
)

// maxDocumentBytes bounds uploaded documents; unified analysis documents for
// short videos are well under this.
const maxDocumentBytes = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	runs, err := s.cfg.Store.ListValidations(r.Context(), limit)
	if err != nil {
		s.logger.Error("list reports", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": runs})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.cfg.Store.GetValidation(r.Context(), id)
	if err != nil {
		if errors.Is(err, analysis.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		s.logger.Error("get report", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleAnalysis returns the newest validation run and all insight runs for a
// video.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	run, err := s.cfg.Store.LatestValidationForVideo(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, analysis.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no analysis for video "+videoID)
			return
		}
		s.logger.Error("latest validation", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	insights, err := s.cfg.Store.ListInsights(r.Context(), videoID)
	if err != nil {
		s.logger.Error("list insights", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load insights")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"validation": run,
		"insights":   insights,
	})
}

// handleValidate validates an uploaded document and stores the run.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}
	rep, err := s.cfg.Validator.ValidateDocument(doc)
	if err != nil && rep == nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	run, saveErr := s.cfg.Store.SaveValidation(r.Context(), doc.VideoID, "", s.cfg.Validator.Mode().String(), rep)
	if saveErr != nil {
		s.logger.Error("save validation", logging.Error(saveErr))
		writeError(w, http.StatusInternalServerError, "failed to store validation run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleExtract runs on-demand extraction for ?purpose= against an uploaded
// document.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	purpose, err := extract.ParsePurpose(r.URL.Query().Get("purpose"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}
	ctx, err := s.cfg.Extractor.Extract(doc, purpose)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ctx)
}

func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (*timeline.Document, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	doc, err := timeline.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document: "+err.Error())
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
