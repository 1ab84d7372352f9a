package api

import (
	"net/http"

	"alcyxob/trainlog/internal/metrics"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/service"
	"alcyxob/trainlog/internal/validation"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService service.SessionService
	instr          *metrics.Instrumentation
}

func NewSessionHandler(sessionService service.SessionService, instr *metrics.Instrumentation) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, instr: instr}
}

// ListSessions godoc
// @Summary List the caller's sessions, newest first
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param from query string false "Inclusive lower bound, YYYY-MM-DD or RFC3339"
// @Param to query string false "Inclusive upper bound, YYYY-MM-DD or RFC3339"
// @Success 200 {array} service.SessionDetail
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var filter repository.SessionFilter
	if from := c.Query("from"); from != "" {
		t, err := validation.ParseDateFilter("from", from)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := validation.ParseDateFilter("to", to)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.To = &t
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), currentUser(c).ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// CreateSession godoc
// @Summary Log a session, optionally seeded from a template
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SessionDetail
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req validation.CreateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id", service.ErrSessionNotFound)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), currentUser(c).ID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) UpdateSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id", service.ErrSessionNotFound)
	if !ok {
		return
	}
	var req validation.UpdateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.UpdateSession(c.Request.Context(), currentUser(c).ID, sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id", service.ErrSessionNotFound)
	if !ok {
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), currentUser(c).ID, sessionID); err != nil {
		respondError(c, err)
		return
	}
	success(c)
}

func (h *SessionHandler) AddSessionExercise(c *gin.Context) {
	sessionID, ok := pathID(c, "id", service.ErrSessionNotFound)
	if !ok {
		return
	}
	var req validation.AddSessionExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	se, err := h.sessionService.AddSessionExercise(c.Request.Context(), currentUser(c).ID, sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, se)
}

// UpsertSetLogs godoc
// @Summary Save set logs of a session
// @Description Idempotent on (sessionExerciseId, setIndex). Either every log is written or none.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.SetLog
// @Failure 400 {object} gin.H "Invalid input, or an entry of another session"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{id}/logs [post]
func (h *SessionHandler) UpsertSetLogs(c *gin.Context) {
	sessionID, ok := pathID(c, "id", service.ErrSessionNotFound)
	if !ok {
		return
	}
	var req validation.BulkUpsertLogsRequest
	if !bindJSON(c, &req) {
		return
	}

	logs, err := h.sessionService.UpsertSetLogs(c.Request.Context(), currentUser(c).ID, sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.instr.CounterSetLogsSaved.Add(float64(len(logs)))
	c.JSON(http.StatusOK, logs)
}
