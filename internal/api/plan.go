package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/planry/internal/export"
	"github.com/foxzi/planry/internal/plan"
	"github.com/foxzi/planry/internal/session"
)

// OrphansResponse is the response for GET /sessions/{id}/orphans
type OrphansResponse struct {
	Emails []plan.EmailAsset `json:"emails"`
	Total  int               `json:"total"`
}

// handleUpdateCampaign handles PATCH /api/v1/sessions/{id}/campaign
func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req session.CampaignUpdate
	if err := decodeJSON(r, &req); err != nil {
		s.sendPlanError(w, err)
		return
	}
	if err := sess.UpdateCampaign(req); err != nil {
		s.sendPlanError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, sess.Snapshot().Campaign)
}

// handleAddContent handles POST /api/v1/sessions/{id}/content
func (s *Server) handleAddContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	idx, err := sess.AddContent()
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	s.sendJSON(w, http.StatusCreated, IndexResponse{Index: idx})
}

// handleUpdateContent handles PATCH /api/v1/sessions/{id}/content/{index}
func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	idx, err := pathInt(r, "index")
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	var req FieldUpdate
	if err := decodeJSON(r, &req); err != nil {
		s.sendPlanError(w, err)
		return
	}

	updated, err := sess.UpdateContent(idx, plan.ContentField(req.Field), req.Value)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, updated)
}

// handleRemoveContent handles DELETE /api/v1/sessions/{id}/content/{index}
func (s *Server) handleRemoveContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	idx, err := pathInt(r, "index")
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	if err := sess.RemoveContent(idx); err != nil {
		s.sendPlanError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// emailTarget resolves the {week} and {brand} path parameters
func emailTarget(r *http.Request) (int, plan.Brand, error) {
	week, err := pathInt(r, "week")
	if err != nil {
		return 0, "", err
	}
	b, err := plan.ParseBrand(chi.URLParam(r, "brand"))
	if err != nil {
		return 0, "", err
	}
	return week, b, nil
}

// handleAddEmail handles POST /api/v1/sessions/{id}/weeks/{week}/{brand}/emails
func (s *Server) handleAddEmail(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	week, b, err := emailTarget(r)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	idx, err := sess.AddEmail(week, b)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, IndexResponse{Index: idx, ID: plan.EmailID(b, week, idx)})
}

// handleUpdateEmail handles PATCH /api/v1/sessions/{id}/weeks/{week}/{brand}/emails/{index}
func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	week, b, err := emailTarget(r)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	idx, err := pathInt(r, "index")
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	var req FieldUpdate
	if err := decodeJSON(r, &req); err != nil {
		s.sendPlanError(w, err)
		return
	}

	updated, err := sess.UpdateEmail(week, b, idx, plan.EmailField(req.Field), req.Value)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, updated)
}

// handleRemoveEmail handles DELETE /api/v1/sessions/{id}/weeks/{week}/{brand}/emails/{index}
func (s *Server) handleRemoveEmail(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	week, b, err := emailTarget(r)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	idx, err := pathInt(r, "index")
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	if err := sess.RemoveEmail(week, b, idx); err != nil {
		s.sendPlanError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAds handles GET /api/v1/sessions/{id}/ads
func (s *Server) handleAds(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		s.sendJSON(w, http.StatusOK, sess.Ads())
	}
}

// handleChecklist handles GET /api/v1/sessions/{id}/checklist
func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		s.sendJSON(w, http.StatusOK, sess.Checklist())
	}
}

// handleOptions handles GET /api/v1/sessions/{id}/options
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	opts := sess.PromoteOptions()
	if opts == nil {
		opts = []plan.PromoteOption{}
	}
	s.sendJSON(w, http.StatusOK, opts)
}

// handleOrphans handles GET /api/v1/sessions/{id}/orphans
func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	orphans := sess.Orphans()
	if orphans == nil {
		orphans = []plan.EmailAsset{}
	}
	s.sendJSON(w, http.StatusOK, OrphansResponse{Emails: orphans, Total: len(orphans)})
}

// handleExport handles GET /api/v1/sessions/{id}/export?format=
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.sendPlanError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, sess.Checklist(), format); err != nil {
		s.sendPlanError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
