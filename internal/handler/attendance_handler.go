package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	"github.com/noah-isme/gym-schedule-api/pkg/response"
)

type attendanceService interface {
	ResolveRoster(ctx context.Context, classID string, sessionNumber int) (*models.Roster, error)
	Mark(ctx context.Context, classID string, sessionNumber int, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error)
	BulkMark(ctx context.Context, classID string, sessionNumber int, req dto.BulkMarkAttendanceRequest) (*dto.BulkMarkAttendanceResponse, error)
	ExportRoster(ctx context.Context, classID string, sessionNumber int, format string) ([]byte, string, error)
}

// AttendanceHandler serves session rosters and attendance marks.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Roster godoc
// @Summary Resolve session roster
// @Description Recorded attendance, or one unmarked row per paid member when none exists.
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param number path int true "Session number"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions/{number}/attendance [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	number, err := sessionNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	roster, err := h.service.ResolveRoster(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Mark godoc
// @Summary Mark attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param number path int true "Session number"
// @Param payload body dto.MarkAttendanceRequest true "Attendance mark"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/sessions/{number}/attendance [put]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	number, err := sessionNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	record, err := h.service.Mark(c.Request.Context(), c.Param("id"), number, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// BulkMark godoc
// @Summary Queue attendance marks
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param number path int true "Session number"
// @Param payload body dto.BulkMarkAttendanceRequest true "Attendance marks"
// @Success 202 {object} response.Envelope
// @Router /classes/{id}/sessions/{number}/attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	number, err := sessionNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.BulkMarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.BulkMark(c.Request.Context(), c.Param("id"), number, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// Export godoc
// @Summary Export session roster
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param number path int true "Session number"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /classes/{id}/sessions/{number}/attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	number, err := sessionNumberParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	body, contentType, err := h.service.ExportRoster(c.Request.Context(), c.Param("id"), number, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attendance-%s-%d.%s", c.Param("id"), number, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
