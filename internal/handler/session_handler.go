package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/middleware"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	"github.com/noah-isme/gym-schedule-api/pkg/response"
)

type sessionLister interface {
	ListSessions(ctx context.Context, classID string) (*dto.SessionListResponse, error)
}

type sessionOpener interface {
	OpenSession(ctx context.Context, classID string, sessionNumber int, req dto.OpenSessionRequest) (*models.SessionInstance, error)
}

// SessionHandler lists and opens class sessions.
type SessionHandler struct {
	sessions sessionLister
	opener   sessionOpener
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions sessionLister, opener sessionOpener) *SessionHandler {
	return &SessionHandler{sessions: sessions, opener: opener}
}

// List godoc
// @Summary List class sessions
// @Description Persisted sessions merged with projections of the current schedule, ordered by date.
// @Tags Sessions
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	result, err := h.sessions.ListSessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Degraded {
		middleware.SetMeta(c, "degraded", true)
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Open godoc
// @Summary Persist a session
// @Description Idempotent. The date defaults to the projected date for the session number.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param number path int true "Session number"
// @Param payload body dto.OpenSessionRequest false "Optional session date"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions/{number}/open [post]
func (h *SessionHandler) Open(c *gin.Context) {
	number, err := sessionNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.OpenSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err))
			return
		}
	}
	session, err := h.opener.OpenSession(c.Request.Context(), c.Param("id"), number, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
