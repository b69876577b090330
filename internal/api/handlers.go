package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/planry/internal/export"
	"github.com/foxzi/planry/internal/plan"
	"github.com/foxzi/planry/internal/session"
)

// maxBodyBytes caps request bodies; plan documents are small
const maxBodyBytes = 1 << 20

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}

// SessionResponse is a session with its full planning state
type SessionResponse struct {
	session.Info
	Plan export.Document `json:"plan"`
}

// SessionListResponse is the response for GET /sessions
type SessionListResponse struct {
	Sessions []session.Info `json:"sessions"`
	Total    int            `json:"total"`
}

// FieldUpdate is the request body for content and email updates
type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// IndexResponse reports the position of an appended item
type IndexResponse struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
}

// ErrorResponse is the error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  Version,
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		Sessions: s.sessions.Len(),
	})
}

// handleCreateSession handles POST /api/v1/sessions. An optional plan
// document in the body seeds the new session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var (
		sess *session.Session
		err  error
	)

	body, err := readBody(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		sess, err = s.sessions.Create()
	} else {
		st, derr := s.decodeState(r, body)
		if derr != nil {
			s.sendPlanError(w, derr)
			return
		}
		sess, err = s.sessions.CreateWithState(st)
	}
	if err != nil {
		s.sendPlanError(w, err)
		return
	}

	s.logger.Info("session created via API", "id", sess.ID())
	s.sendJSON(w, http.StatusCreated, sessionResponse(sess))
}

// handleListSessions handles GET /api/v1/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	s.sendJSON(w, http.StatusOK, SessionListResponse{Sessions: list, Total: len(list)})
}

// handleGetSession handles GET /api/v1/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.sendJSON(w, http.StatusOK, sessionResponse(sess))
}

// handleImportSession handles PUT /api/v1/sessions/{id}
func (s *Server) handleImportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := readBody(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	st, err := s.decodeState(r, body)
	if err != nil {
		s.sendPlanError(w, err)
		return
	}
	if err := sess.Import(st); err != nil {
		s.sendPlanError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, sessionResponse(sess))
}

// handleDeleteSession handles DELETE /api/v1/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		s.sendPlanError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {id} path parameter, writing a 404 if it is unknown
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.sendPlanError(w, err)
		return nil, false
	}
	return sess, true
}

func sessionResponse(sess *session.Session) SessionResponse {
	return SessionResponse{
		Info: sess.Info(),
		Plan: export.FromState(sess.Snapshot()),
	}
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// decodeState parses a plan document, as YAML when the request says so and
// JSON otherwise
func (s *Server) decodeState(r *http.Request, body []byte) (session.State, error) {
	format := export.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = export.FormatYAML
	}

	doc, err := export.Decode(body, format)
	if err != nil {
		return session.State{}, &requestError{err}
	}
	return doc.State()
}

// requestError marks a malformed request
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string) error {
	return &requestError{errors.New(msg)}
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return n, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return badRequest("Invalid request body")
	}
	return nil
}

// statusFor maps an error to an HTTP status
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound), errors.Is(err, export.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, plan.ErrInvalidDuration),
		errors.Is(err, plan.ErrIndexOutOfRange),
		errors.Is(err, plan.ErrWeekOutOfRange),
		errors.Is(err, plan.ErrDuplicateWeek),
		errors.Is(err, plan.ErrUnknownBrand),
		errors.Is(err, plan.ErrUnknownEmailType),
		errors.Is(err, plan.ErrUnknownContentType),
		errors.Is(err, plan.ErrUnknownField):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// sendPlanError writes err with the status it maps to
func (s *Server) sendPlanError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		s.sendError(w, status, "Internal error")
		return
	}
	s.sendError(w, status, err.Error())
}

// sendJSON sends a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}
