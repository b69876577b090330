package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/planry/internal/export"
)

// ArchiveListResponse is the response for GET /archive
type ArchiveListResponse struct {
	Entries []ArchiveSummary `json:"entries"`
	Total   int              `json:"total"`
}

// ArchiveSummary is an archive entry without its checklist
type ArchiveSummary struct {
	ID         string `json:"id"`
	Campaign   string `json:"campaign"`
	SessionID  string `json:"session_id,omitempty"`
	CreatedAt  string `json:"created_at"`
	TotalItems int    `json:"total_items"`
}

func (s *Server) archiveAvailable(w http.ResponseWriter) bool {
	if s.archive == nil {
		s.sendError(w, http.StatusServiceUnavailable, "Archive is not configured")
		return false
	}
	return true
}

// handleArchiveSession handles POST /api/v1/sessions/{id}/archive
func (s *Server) handleArchiveSession(w http.ResponseWriter, r *http.Request) {
	if !s.archiveAvailable(w) {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	entry := &export.Entry{
		SessionID: sess.ID(),
		Checklist: sess.Checklist(),
	}
	if err := s.archive.Save(r.Context(), entry); err != nil {
		s.sendPlanError(w, err)
		return
	}

	s.logger.Info("checklist archived", "id", entry.ID, "session", sess.ID())
	s.sendJSON(w, http.StatusCreated, entry)
}

// handleListArchive handles GET /api/v1/archive
func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	if !s.archiveAvailable(w) {
		return
	}

	filter := export.ListFilter{
		Limit:  100,
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	entries, err := s.archive.List(r.Context(), filter)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}

	resp := ArchiveListResponse{Entries: make([]ArchiveSummary, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, ArchiveSummary{
			ID:         e.ID,
			Campaign:   e.Campaign,
			SessionID:  e.SessionID,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
			TotalItems: e.Checklist.Totals.Grand,
		})
	}
	resp.Total = len(resp.Entries)

	s.sendJSON(w, http.StatusOK, resp)
}

// handleGetArchive handles GET /api/v1/archive/{id}
func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	if !s.archiveAvailable(w) {
		return
	}

	entry, err := s.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sendPlanError(w, err)
		return
	}

	if f := r.URL.Query().Get("format"); f != "" && f != string(export.FormatJSON) {
		format, err := export.ParseFormat(f)
		if err != nil {
			s.sendPlanError(w, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		if err := export.Render(w, entry.Checklist, format); err != nil {
			s.logger.Error("failed to render archived checklist", "id", entry.ID, "error", err)
		}
		return
	}

	s.sendJSON(w, http.StatusOK, entry)
}

// handleDeleteArchive handles DELETE /api/v1/archive/{id}
func (s *Server) handleDeleteArchive(w http.ResponseWriter, r *http.Request) {
	if !s.archiveAvailable(w) {
		return
	}

	if err := s.archive.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.sendPlanError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
