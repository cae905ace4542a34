package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

type attendanceServiceStub struct {
	lastMark dto.MarkAttendanceRequest
	bulk     dto.BulkMarkAttendanceRequest
}

func (s *attendanceServiceStub) ResolveRoster(ctx context.Context, classID string, sessionNumber int) (*models.Roster, error) {
	return &models.Roster{ClassID: classID, SessionNumber: sessionNumber, Synthesized: true, Records: []models.AttendanceRecord{
		{ClassID: classID, SessionNumber: sessionNumber, StudentID: "member-1", StudentName: "Ada"},
	}}, nil
}

func (s *attendanceServiceStub) Mark(ctx context.Context, classID string, sessionNumber int, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	s.lastMark = req
	return &models.AttendanceRecord{ClassID: classID, SessionNumber: sessionNumber, StudentID: req.UserID, IsPresent: req.IsPresent}, nil
}

func (s *attendanceServiceStub) BulkMark(ctx context.Context, classID string, sessionNumber int, req dto.BulkMarkAttendanceRequest) (*dto.BulkMarkAttendanceResponse, error) {
	s.bulk = req
	return &dto.BulkMarkAttendanceResponse{Queued: len(req.Items)}, nil
}

func (s *attendanceServiceStub) ExportRoster(ctx context.Context, classID string, sessionNumber int, format string) ([]byte, string, error) {
	if format != "csv" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return []byte("member_id,member_name,status,notes,marked_at\n"), "text/csv", nil
}

func newAttendanceRouter(stub *attendanceServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAttendanceHandler(stub)
	router.GET("/classes/:id/sessions/:number/attendance", h.Roster)
	router.PUT("/classes/:id/sessions/:number/attendance", h.Mark)
	router.POST("/classes/:id/sessions/:number/attendance/bulk", h.BulkMark)
	router.GET("/classes/:id/sessions/:number/attendance/export", h.Export)
	return router
}

func TestAttendanceHandlerRoster(t *testing.T) {
	router := newAttendanceRouter(&attendanceServiceStub{})

	req, _ := http.NewRequest(http.MethodGet, "/classes/class-1/sessions/2/attendance", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"synthesized":true`)
	assert.Contains(t, resp.Body.String(), `"is_present":null`)
}

func TestAttendanceHandlerMark(t *testing.T) {
	stub := &attendanceServiceStub{}
	router := newAttendanceRouter(stub)

	resp := performRequest(router, jsonRequest(http.MethodPut, "/classes/class-1/sessions/2/attendance", `{"userId":"member-1","isPresent":false}`))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, stub.lastMark.IsPresent)
	assert.False(t, *stub.lastMark.IsPresent)

	resp = performRequest(router, jsonRequest(http.MethodPost, "/classes/class-1/sessions/2/attendance/bulk", `{"items":[{"userId":"member-1","isPresent":true},{"userId":"member-2","isPresent":true}]}`))
	require.Equal(t, http.StatusAccepted, resp.Code)
	assert.Contains(t, resp.Body.String(), `"queued":2`)
	assert.Len(t, stub.bulk.Items, 2)
}

func TestAttendanceHandlerExport(t *testing.T) {
	router := newAttendanceRouter(&attendanceServiceStub{})

	req, _ := http.NewRequest(http.MethodGet, "/classes/class-1/sessions/2/attendance/export", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), `attendance-class-1-2.csv`)

	req, _ = http.NewRequest(http.MethodGet, "/classes/class-1/sessions/2/attendance/export?format=xlsx", nil)
	resp = performRequest(router, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
