package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/middleware"
	"github.com/noah-isme/gym-schedule-api/internal/models"
)

type sessionServiceStub struct {
	list     *dto.SessionListResponse
	openReq  dto.OpenSessionRequest
	openedNo int
}

func (s *sessionServiceStub) ListSessions(ctx context.Context, classID string) (*dto.SessionListResponse, error) {
	return s.list, nil
}

func (s *sessionServiceStub) OpenSession(ctx context.Context, classID string, sessionNumber int, req dto.OpenSessionRequest) (*models.SessionInstance, error) {
	s.openReq = req
	s.openedNo = sessionNumber
	return &models.SessionInstance{ID: "session-1", ClassID: classID, SessionNumber: sessionNumber, Origin: models.SessionOriginPersisted}, nil
}

func newSessionRouter(stub *sessionServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	h := NewSessionHandler(stub, stub)
	router.GET("/classes/:id/sessions", h.List)
	router.POST("/classes/:id/sessions/:number/open", h.Open)
	return router
}

func TestSessionHandlerListDegraded(t *testing.T) {
	stub := &sessionServiceStub{list: &dto.SessionListResponse{
		ClassID:  "class-1",
		Degraded: true,
		Sessions: []models.SessionInstance{{ClassID: "class-1", SessionNumber: 1, SessionDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Origin: models.SessionOriginProjected}},
	}}
	router := newSessionRouter(stub)

	req, _ := http.NewRequest(http.MethodGet, "/classes/class-1/sessions", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"degraded":true`)
	assert.Contains(t, resp.Body.String(), `"origin":"projected"`)
}

func TestSessionHandlerOpen(t *testing.T) {
	stub := &sessionServiceStub{}
	router := newSessionRouter(stub)

	req, _ := http.NewRequest(http.MethodPost, "/classes/class-1/sessions/3/open", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 3, stub.openedNo)
	assert.Empty(t, stub.openReq.SessionDate)

	resp = performRequest(router, jsonRequest(http.MethodPost, "/classes/class-1/sessions/4/open", `{"sessionDate":"2024-01-09"}`))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "2024-01-09", stub.openReq.SessionDate)

	req, _ = http.NewRequest(http.MethodPost, "/classes/class-1/sessions/zero/open", nil)
	resp = performRequest(router, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
