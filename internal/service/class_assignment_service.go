package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

type classAssignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassAssignment, error)
	FindCurrentByClass(ctx context.Context, classID string) (*models.ClassAssignment, error)
	ListCurrentByTrainer(ctx context.Context, trainerID string) ([]models.ClassAssignment, error)
	CreateVersion(ctx context.Context, assignment *models.ClassAssignment) error
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// ClassAssignmentService manages schedule snapshots and trainer conflict detection.
type ClassAssignmentService struct {
	repo      classAssignmentRepository
	classes   classReader
	sessions  sessionCacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

type sessionCacheInvalidator interface {
	Invalidate(ctx context.Context, classID string)
}

// NewClassAssignmentService instantiates ClassAssignmentService.
func NewClassAssignmentService(repo classAssignmentRepository, classes classReader, sessions sessionCacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ClassAssignmentService {
	if validate == nil {
		validate = NewValidator()
	} else {
		registerScheduleValidations(validate)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassAssignmentService{repo: repo, classes: classes, sessions: sessions, metrics: metrics, validator: validate, logger: logger}
}

// Get returns an assignment snapshot by id.
func (s *ClassAssignmentService) Get(ctx context.Context, id string) (*models.ClassAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class assignment")
	}
	return assignment, nil
}

// ListByTrainer returns the current assignment of every class the trainer teaches.
func (s *ClassAssignmentService) ListByTrainer(ctx context.Context, trainerID string) ([]models.ClassAssignment, error) {
	assignments, err := s.repo.ListCurrentByTrainer(ctx, trainerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainer assignments")
	}
	return assignments, nil
}

// Create stores the first schedule snapshot for a class after conflict detection.
func (s *ClassAssignmentService) Create(ctx context.Context, req dto.CreateClassAssignmentRequest) (*models.ClassAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class assignment payload")
	}
	if s.classes != nil {
		if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
	}
	if _, err := s.repo.FindCurrentByClass(ctx, req.ClassID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class already has a schedule, update it instead")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}

	assignment, err := buildAssignment(req.ClassID, req.TrainerID, req.PatternInput, req.StartDate, req.EndDate, req.TotalSessions, req.Room)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoConflict(ctx, assignment.Descriptor(), ""); err != nil {
		return nil, err
	}
	if err := s.repo.CreateVersion(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class assignment")
	}
	s.logger.Info("class assignment created",
		zap.String("assignment_id", assignment.ID),
		zap.String("class_id", assignment.ClassID),
		zap.String("trainer_id", assignment.TrainerID),
		zap.String("pattern", assignment.Pattern.String()),
	)
	return assignment, nil
}

// Update writes a new snapshot version. The previous version stays untouched.
func (s *ClassAssignmentService) Update(ctx context.Context, id string, req dto.UpdateClassAssignmentRequest) (*models.ClassAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class assignment payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment, err := buildAssignment(existing.ClassID, req.TrainerID, req.PatternInput, req.StartDate, req.EndDate, req.TotalSessions, req.Room)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoConflict(ctx, assignment.Descriptor(), existing.ID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateVersion(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class assignment")
	}
	if s.sessions != nil {
		s.sessions.Invalidate(ctx, assignment.ClassID)
	}
	s.logger.Info("class assignment versioned",
		zap.String("previous_id", existing.ID),
		zap.String("assignment_id", assignment.ID),
		zap.Int("version", assignment.Version),
	)
	return assignment, nil
}

// CheckConflict answers the conflict-check query. A conflict is a normal result; only
// storage failures are errors, and they are reported as transient.
func (s *ClassAssignmentService) CheckConflict(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	pattern, dateRange, err := resolveSchedule(req.PatternInput, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	candidate := models.ScheduleDescriptor{TrainerID: req.TrainerID, Pattern: pattern, Range: dateRange}
	if req.ExcludeAssignmentID != "" {
		excluded, err := s.repo.FindByID(ctx, req.ExcludeAssignmentID)
		switch {
		case err == nil:
			candidate.AssignmentID = excluded.ID
			candidate.ClassID = excluded.ClassID
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "excluded assignment not found")
		default:
			s.metrics.RecordConflictCheck(conflictOutcomeUnverifiable)
			return nil, appErrors.Wrap(err, appErrors.ErrTransient.Code, appErrors.ErrTransient.Status, "conflict check unavailable")
		}
	}

	conflicts, err := s.findConflicts(ctx, candidate, req.ExcludeAssignmentID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ConflictCheckResponse{HasConflict: len(conflicts) > 0, Details: DescribeConflicts(conflicts), Conflicts: conflicts}
	return resp, nil
}

func (s *ClassAssignmentService) findConflicts(ctx context.Context, candidate models.ScheduleDescriptor, excludeID string) ([]models.ScheduleConflict, error) {
	existing, err := s.repo.ListCurrentByTrainer(ctx, candidate.TrainerID)
	if err != nil {
		s.metrics.RecordConflictCheck(conflictOutcomeUnverifiable)
		s.logger.Warn("conflict check could not load trainer schedule", zap.String("trainer_id", candidate.TrainerID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrTransient.Code, appErrors.ErrTransient.Status, "conflict check unavailable")
	}
	conflicts := DetectConflicts(candidate, existing, excludeID)
	if len(conflicts) > 0 {
		s.metrics.RecordConflictCheck(conflictOutcomeConflict)
	} else {
		s.metrics.RecordConflictCheck(conflictOutcomeClear)
	}
	return conflicts, nil
}

func (s *ClassAssignmentService) ensureNoConflict(ctx context.Context, candidate models.ScheduleDescriptor, excludeID string) error {
	conflicts, err := s.findConflicts(ctx, candidate, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	message := DescribeConflicts(conflicts)
	domainErr := &models.ScheduleConflictError{Type: "TRAINER", Message: message, Conflicts: conflicts}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("schedule conflict: %s", message))
}

func buildAssignment(classID, trainerID string, input dto.PatternInput, startRaw, endRaw string, totalSessions *int, room string) (*models.ClassAssignment, error) {
	pattern, dateRange, err := resolveSchedule(input, startRaw, endRaw)
	if err != nil {
		return nil, err
	}
	if len(pattern) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekly pattern needs at least one slot")
	}
	return &models.ClassAssignment{
		ClassID:       classID,
		TrainerID:     trainerID,
		Pattern:       pattern,
		StartDate:     dateRange.Start,
		EndDate:       dateRange.End,
		TotalSessions: totalSessions,
		Room:          room,
	}, nil
}

func resolveSchedule(input dto.PatternInput, startRaw, endRaw string) (models.WeeklyPattern, models.DateRange, error) {
	raw, err := input.Pattern()
	if err != nil {
		return nil, models.DateRange{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	pattern, err := raw.Normalize()
	if err != nil {
		return nil, models.DateRange{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	start, err := time.Parse(models.DateLayout, startRaw)
	if err != nil {
		return nil, models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "invalid startDate, expected YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, endRaw)
	if err != nil {
		return nil, models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "invalid endDate, expected YYYY-MM-DD")
	}
	dateRange := models.NewDateRange(start, end)
	if dateRange.Empty() {
		return nil, models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "startDate must not be after endDate")
	}
	return pattern, dateRange, nil
}
