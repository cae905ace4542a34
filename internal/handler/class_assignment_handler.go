package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	"github.com/noah-isme/gym-schedule-api/pkg/response"
)

type classAssignmentService interface {
	Get(ctx context.Context, id string) (*models.ClassAssignment, error)
	ListByTrainer(ctx context.Context, trainerID string) ([]models.ClassAssignment, error)
	Create(ctx context.Context, req dto.CreateClassAssignmentRequest) (*models.ClassAssignment, error)
	Update(ctx context.Context, id string, req dto.UpdateClassAssignmentRequest) (*models.ClassAssignment, error)
	CheckConflict(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
}

// ClassAssignmentHandler serves class schedule snapshots and the conflict-check query.
type ClassAssignmentHandler struct {
	service classAssignmentService
}

// NewClassAssignmentHandler constructs handler.
func NewClassAssignmentHandler(svc classAssignmentService) *ClassAssignmentHandler {
	return &ClassAssignmentHandler{service: svc}
}

// Get godoc
// @Summary Get class assignment
// @Tags ClassAssignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /class-assignments/{id} [get]
func (h *ClassAssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// ListByTrainer godoc
// @Summary List a trainer's current class assignments
// @Tags ClassAssignments
// @Produce json
// @Param id path string true "Trainer ID"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id}/class-assignments [get]
func (h *ClassAssignmentHandler) ListByTrainer(c *gin.Context) {
	assignments, err := h.service.ListByTrainer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Create godoc
// @Summary Create class assignment
// @Description Rejects the schedule with 409 when it overlaps another class of the same trainer.
// @Tags ClassAssignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /class-assignments [post]
func (h *ClassAssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateClassAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Write a new class assignment version
// @Tags ClassAssignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateClassAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /class-assignments/{id} [put]
func (h *ClassAssignmentHandler) Update(c *gin.Context) {
	var req dto.UpdateClassAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// CheckConflict godoc
// @Summary Check a draft schedule for trainer conflicts
// @Description A conflict is a successful result; 503 means the check could not be completed.
// @Tags ClassAssignments
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Draft schedule"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /schedules/conflict-check [post]
func (h *ClassAssignmentHandler) CheckConflict(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.CheckConflict(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
