package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
	"github.com/noah-isme/gym-schedule-api/pkg/export"
	"github.com/noah-isme/gym-schedule-api/pkg/jobs"
)

// AttendanceJobType tags queued attendance marks.
const AttendanceJobType = "attendance.mark"

type attendanceRepository interface {
	ListBySession(ctx context.Context, classID string, sessionNumber int) ([]models.AttendanceRecord, error)
	SeedRoster(ctx context.Context, session *models.SessionInstance, members []models.RosterMember) error
	Upsert(ctx context.Context, mark models.AttendanceMark) (*models.AttendanceRecord, error)
}

type rosterReader interface {
	ListPaidMembers(ctx context.Context, classID string) ([]models.RosterMember, error)
}

type sessionEnsurer interface {
	EnsureSessionExists(ctx context.Context, classID string, sessionNumber int, sessionDate *time.Time) (*models.SessionInstance, error)
	Invalidate(ctx context.Context, classID string)
}

type attendanceQueue interface {
	Enqueue(job jobs.Job) error
}

// AttendanceService resolves session rosters and records attendance marks.
type AttendanceService struct {
	records   attendanceRepository
	roster    rosterReader
	sessions  sessionEnsurer
	queue     attendanceQueue
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service. A nil queue applies bulk marks inline.
func NewAttendanceService(records attendanceRepository, roster rosterReader, sessions sessionEnsurer, queue attendanceQueue, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		records:   records,
		roster:    roster,
		sessions:  sessions,
		queue:     queue,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// ResolveRoster returns recorded attendance for the session, or one unmarked stub per paid
// member when nothing has been recorded yet. It never writes.
func (s *AttendanceService) ResolveRoster(ctx context.Context, classID string, sessionNumber int) (*models.Roster, error) {
	if sessionNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session number must be positive")
	}
	records, err := s.records.ListBySession(ctx, classID, sessionNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if len(records) > 0 {
		return &models.Roster{ClassID: classID, SessionNumber: sessionNumber, Records: records}, nil
	}

	members, err := s.roster.ListPaidMembers(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	stubs := make([]models.AttendanceRecord, 0, len(members))
	for _, member := range members {
		stubs = append(stubs, models.AttendanceRecord{
			ClassID:       classID,
			SessionNumber: sessionNumber,
			StudentID:     member.StudentID,
			StudentName:   member.FullName,
		})
	}
	return &models.Roster{ClassID: classID, SessionNumber: sessionNumber, Synthesized: true, Records: stubs}, nil
}

// OpenSession persists the session and seeds its roster so later reads return every paid
// member. Calling it again is a no-op.
func (s *AttendanceService) OpenSession(ctx context.Context, classID string, sessionNumber int, req dto.OpenSessionRequest) (*models.SessionInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	var date *time.Time
	if req.SessionDate != "" {
		parsed, err := time.Parse(models.DateLayout, req.SessionDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid sessionDate, expected YYYY-MM-DD")
		}
		date = &parsed
	}
	return s.openSession(ctx, classID, sessionNumber, date)
}

// Mark upserts one member's attendance keyed by (class, session, member).
func (s *AttendanceService) Mark(ctx context.Context, classID string, sessionNumber int, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	session, err := s.openSession(ctx, classID, sessionNumber, nil)
	if err != nil {
		return nil, err
	}
	record, err := s.records.Upsert(ctx, toMark(session, req))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	s.sessions.Invalidate(ctx, classID)
	return record, nil
}

// BulkMark opens the session once and queues one upsert per item.
func (s *AttendanceService) BulkMark(ctx context.Context, classID string, sessionNumber int, req dto.BulkMarkAttendanceRequest) (*dto.BulkMarkAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	session, err := s.openSession(ctx, classID, sessionNumber, nil)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkMarkAttendanceResponse{}
	for _, item := range req.Items {
		mark := toMark(session, item)
		if s.queue == nil {
			if _, err := s.records.Upsert(ctx, mark); err != nil {
				resp.Rejected = append(resp.Rejected, models.AttendanceBulkFailure{StudentID: item.UserID, Reason: err.Error()})
				continue
			}
			resp.Queued++
			continue
		}
		job := jobs.Job{ID: attendanceJobID(mark), Type: AttendanceJobType, Payload: mark}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("attendance mark not queued", zap.String("job_id", job.ID), zap.Error(err))
			resp.Rejected = append(resp.Rejected, models.AttendanceBulkFailure{StudentID: item.UserID, Reason: "queue unavailable"})
			continue
		}
		resp.Queued++
	}
	if s.queue == nil {
		s.sessions.Invalidate(ctx, classID)
	}
	return resp, nil
}

// ExportRoster renders the resolved roster as CSV or PDF.
func (s *AttendanceService) ExportRoster(ctx context.Context, classID string, sessionNumber int, format string) ([]byte, string, error) {
	roster, err := s.ResolveRoster(ctx, classID, sessionNumber)
	if err != nil {
		return nil, "", err
	}
	dataset := export.Dataset{Headers: []string{"member_id", "member_name", "status", "notes", "marked_at"}}
	for _, record := range roster.Records {
		row := map[string]string{
			"member_id":   record.StudentID,
			"member_name": record.StudentName,
			"status":      attendanceLabel(record.IsPresent),
		}
		if record.Notes != nil {
			row["notes"] = *record.Notes
		}
		if record.Timestamp != nil {
			row["marked_at"] = record.Timestamp.UTC().Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	switch strings.ToLower(format) {
	case "", "csv":
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return body, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("Class %s session %d", classID, sessionNumber)
		body, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return body, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *AttendanceService) openSession(ctx context.Context, classID string, sessionNumber int, date *time.Time) (*models.SessionInstance, error) {
	session, err := s.sessions.EnsureSessionExists(ctx, classID, sessionNumber, date)
	if err != nil {
		return nil, err
	}
	members, err := s.roster.ListPaidMembers(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	if err := s.records.SeedRoster(ctx, session, members); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed session roster")
	}
	return session, nil
}

func toMark(session *models.SessionInstance, req dto.MarkAttendanceRequest) models.AttendanceMark {
	present := false
	if req.IsPresent != nil {
		present = *req.IsPresent
	}
	return models.AttendanceMark{
		SessionID:     session.ID,
		ClassID:       session.ClassID,
		SessionNumber: session.SessionNumber,
		StudentID:     req.UserID,
		IsPresent:     present,
		Notes:         req.Notes,
	}
}

func attendanceJobID(mark models.AttendanceMark) string {
	return mark.ClassID + ":" + strconv.Itoa(mark.SessionNumber) + ":" + mark.StudentID
}

func attendanceLabel(present *bool) string {
	switch {
	case present == nil:
		return "UNMARKED"
	case *present:
		return "PRESENT"
	default:
		return "ABSENT"
	}
}

// AttendanceWorker applies queued attendance marks.
type AttendanceWorker struct {
	records    attendanceRepository
	sessions   sessionEnsurer
	metrics    *MetricsService
	maxRetries int
	logger     *zap.Logger
}

// NewAttendanceWorker constructs a worker.
func NewAttendanceWorker(records attendanceRepository, sessions sessionEnsurer, metrics *MetricsService, maxRetries int, logger *zap.Logger) *AttendanceWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &AttendanceWorker{records: records, sessions: sessions, metrics: metrics, maxRetries: maxRetries, logger: logger}
}

// Handle processes a queue job. Upserts are idempotent so retries are safe.
func (w *AttendanceWorker) Handle(ctx context.Context, job jobs.Job) error {
	mark, ok := job.Payload.(models.AttendanceMark)
	if !ok {
		w.metrics.RecordAttendanceJob("rejected")
		w.logger.Sugar().Errorw("unexpected attendance payload", "job_id", job.ID, "type", fmt.Sprintf("%T", job.Payload))
		return nil
	}
	if _, err := w.records.Upsert(ctx, mark); err != nil {
		if job.Attempt >= w.maxRetries {
			w.metrics.RecordAttendanceJob("failed")
		} else {
			w.metrics.RecordAttendanceJob("retried")
		}
		return fmt.Errorf("upsert attendance %s: %w", job.ID, err)
	}
	w.metrics.RecordAttendanceJob("applied")
	w.sessions.Invalidate(ctx, mark.ClassID)
	return nil
}
