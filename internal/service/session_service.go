package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

type sessionRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.SessionInstance, error)
	FindByNumber(ctx context.Context, classID string, sessionNumber int) (*models.SessionInstance, error)
	EnsureExists(ctx context.Context, session *models.SessionInstance) (*models.SessionInstance, error)
}

type currentAssignmentReader interface {
	FindCurrentByClass(ctx context.Context, classID string) (*models.ClassAssignment, error)
}

type rosterCounter interface {
	CountPaidMembers(ctx context.Context, classID string) (int, error)
}

// SessionServiceConfig carries materialization and caching knobs.
type SessionServiceConfig struct {
	HorizonDays int
	Fallback    models.WeeklyPattern
	CacheTTL    time.Duration
}

// SessionService lists reconciled sessions and promotes projected sessions to persisted ones.
type SessionService struct {
	sessions    sessionRepository
	assignments currentAssignmentReader
	roster      rosterCounter
	cache       *CacheService
	metrics     *MetricsService
	cfg         SessionServiceConfig
	logger      *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions sessionRepository, assignments currentAssignmentReader, roster rosterCounter, cache *CacheService, metrics *MetricsService, cfg SessionServiceConfig, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	return &SessionService{sessions: sessions, assignments: assignments, roster: roster, cache: cache, metrics: metrics, cfg: cfg, logger: logger}
}

// ListSessions returns the class's sessions in ascending date order, combining persisted
// sessions with projections of the current assignment. When persisted sessions cannot be
// loaded the listing degrades to projections only.
func (s *SessionService) ListSessions(ctx context.Context, classID string) (*dto.SessionListResponse, error) {
	gen, cacheable := s.cache.Generation(ctx, "sessions", classID)
	cacheKey := s.cache.Key("sessions", classID, "v"+strconv.FormatInt(gen, 10))
	var cached dto.SessionListResponse
	if cacheable && s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	assignment, err := s.currentAssignment(ctx, classID)
	if err != nil {
		return nil, err
	}
	projection := s.project(assignment)

	rosterSize, err := s.roster.CountPaidMembers(ctx, classID)
	if err != nil {
		s.logger.Warn("roster size unavailable", zap.String("class_id", classID), zap.Error(err))
		rosterSize = 0
	}

	resp := &dto.SessionListResponse{ClassID: classID, Warnings: projection.Warnings}
	persisted, err := s.sessions.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Warn("persisted sessions unavailable, serving projections", zap.String("class_id", classID), zap.Error(err))
		s.metrics.RecordReconcileDegraded()
		resp.Degraded = true
		persisted = nil
	}
	resp.Sessions = ReconcileSessions(classID, persisted, projection.Stubs, rosterSize)

	if cacheable && !resp.Degraded {
		s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL)
	}
	return resp, nil
}

// EnsureSessionExists returns the persisted session for (class, number), creating it on
// first use. The date defaults to the projected date for that number. Repeated calls
// return the same row.
func (s *SessionService) EnsureSessionExists(ctx context.Context, classID string, sessionNumber int, sessionDate *time.Time) (*models.SessionInstance, error) {
	if sessionNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session number must be positive")
	}
	existing, err := s.sessions.FindByNumber(ctx, classID, sessionNumber)
	if err == nil {
		existing.Origin = models.SessionOriginPersisted
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	var date time.Time
	if sessionDate != nil {
		date = models.DateOnly(*sessionDate)
	} else {
		assignment, err := s.currentAssignment(ctx, classID)
		if err != nil {
			return nil, err
		}
		stub, ok := findStub(s.project(assignment).Stubs, sessionNumber)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("session %d is not on the class schedule", sessionNumber))
		}
		date = stub.SessionDate
	}

	total, err := s.roster.CountPaidMembers(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class roster")
	}
	session, err := s.sessions.EnsureExists(ctx, &models.SessionInstance{
		ClassID:       classID,
		SessionNumber: sessionNumber,
		SessionDate:   date,
		TotalStudents: total,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("another session already occupies %s", date.Format(models.DateLayout)))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	session.Origin = models.SessionOriginPersisted
	s.Invalidate(ctx, classID)
	s.logger.Info("session persisted",
		zap.String("class_id", classID),
		zap.Int("session_number", session.SessionNumber),
		zap.String("session_date", session.SessionDate.Format(models.DateLayout)),
	)
	return session, nil
}

// Invalidate retires cached listings for the class. A listing computed before the call is
// stored under the previous generation and never served.
func (s *SessionService) Invalidate(ctx context.Context, classID string) {
	_ = s.cache.Bump(ctx, "sessions", classID)
}

func (s *SessionService) currentAssignment(ctx context.Context, classID string) (*models.ClassAssignment, error) {
	assignment, err := s.assignments.FindCurrentByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}
	return assignment, nil
}

func (s *SessionService) project(assignment *models.ClassAssignment) MaterializeResult {
	result := MaterializeSessions(assignment.ActiveRange(), assignment.Pattern, assignment.TotalSessions, MaterializeOptions{
		HorizonDays: s.cfg.HorizonDays,
		Fallback:    s.cfg.Fallback,
	})
	s.metrics.ObserveMaterialization(len(result.Stubs))
	for _, warning := range result.Warnings {
		s.logger.Warn("session materialization corrected", zap.String("class_id", assignment.ClassID), zap.String("warning", warning))
	}
	return result
}
