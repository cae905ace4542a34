package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

// ValidationState is the observable state of a draft schedule.
type ValidationState string

const (
	ValidationIdle         ValidationState = "idle"
	ValidationChecking     ValidationState = "checking"
	ValidationConflict     ValidationState = "conflict"
	ValidationClear        ValidationState = "clear"
	ValidationUnverifiable ValidationState = "unverifiable"
	ValidationInvalid      ValidationState = "invalid"
)

const (
	defaultDebounceWindow = 800 * time.Millisecond
	defaultCheckTimeout   = 5 * time.Second
)

// ValidationResult is published whenever the current generation changes state.
type ValidationResult struct {
	Generation uint64                    `json:"generation"`
	State      ValidationState           `json:"state"`
	Details    string                    `json:"details,omitempty"`
	Conflicts  []models.ScheduleConflict `json:"conflicts,omitempty"`
	Err        error                     `json:"-"`
}

// BlocksSubmission reports whether a draft in this state may not be saved. Only a
// verified clear result allows submission.
func (r ValidationResult) BlocksSubmission() bool {
	return r.State != ValidationClear
}

// ConflictChecker runs one conflict-check query.
type ConflictChecker interface {
	CheckConflict(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
}

// ControllerConfig tunes debounce and timeouts. OnChange runs outside the controller's locks,
// so it may call Current; it must not call Edit or Cancel synchronously.
type ControllerConfig struct {
	Debounce     time.Duration
	CheckTimeout time.Duration
	OnChange     func(ValidationResult)
	Logger       *zap.Logger
}

// ConflictValidationController debounces draft edits into conflict checks. Every edit
// issues a new generation; results from older generations are dropped on arrival.
type ConflictValidationController struct {
	checker  ConflictChecker
	debounce time.Duration
	timeout  time.Duration
	onChange func(ValidationResult)
	logger   *zap.Logger

	generation atomic.Uint64

	mu      sync.Mutex
	pending *time.Timer
	closed  bool

	notifyMu sync.Mutex
	current  ValidationResult
	seq      uint64

	deliverMu sync.Mutex
	delivered uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewConflictValidationController wires a controller to a checker.
func NewConflictValidationController(checker ConflictChecker, cfg ControllerConfig) *ConflictValidationController {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounceWindow
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = defaultCheckTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ConflictValidationController{
		checker:  checker,
		debounce: cfg.Debounce,
		timeout:  cfg.CheckTimeout,
		onChange: cfg.OnChange,
		logger:   cfg.Logger,
		current:  ValidationResult{State: ValidationIdle},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Edit records a new draft and schedules its validation after the quiet period. A pending
// validation for an earlier draft is cancelled. The returned generation identifies the draft.
func (c *ConflictValidationController) Edit(draft dto.ConflictCheckRequest) uint64 {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	gen := c.generation.Add(1)
	if c.pending != nil {
		c.pending.Stop()
	}
	// checking must be stored before the timer can deliver this generation's result.
	checking := ValidationResult{Generation: gen, State: ValidationChecking}
	seq, _ := c.store(checking)
	c.pending = time.AfterFunc(c.debounce, func() { c.run(gen, draft) })
	c.mu.Unlock()

	c.notify(seq, checking)
	return gen
}

// Cancel drops the pending validation and any in-flight result, returning to idle.
func (c *ConflictValidationController) Cancel() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	gen := c.generation.Add(1)
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	idle := ValidationResult{Generation: gen, State: ValidationIdle}
	seq, _ := c.store(idle)
	c.mu.Unlock()

	c.notify(seq, idle)
}

// Close stops the controller. Later edits are ignored.
func (c *ConflictValidationController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation.Add(1)
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.cancel()
}

// Current returns the most recently published result.
func (c *ConflictValidationController) Current() ValidationResult {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	return c.current
}

// Generation returns the latest issued generation.
func (c *ConflictValidationController) Generation() uint64 {
	return c.generation.Load()
}

func (c *ConflictValidationController) run(gen uint64, draft dto.ConflictCheckRequest) {
	if gen != c.generation.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	resp, err := c.checker.CheckConflict(ctx, draft)
	result := classifyCheck(gen, resp, err)
	if !c.publish(result) {
		c.logger.Debug("discarded stale conflict check", zap.Uint64("generation", gen), zap.String("state", string(result.State)))
		return
	}
	if result.State == ValidationUnverifiable {
		c.logger.Warn("conflict check unverifiable", zap.Uint64("generation", gen), zap.Error(err))
	}
}

// publish applies the result only when it belongs to the latest generation.
func (c *ConflictValidationController) publish(result ValidationResult) bool {
	seq, ok := c.store(result)
	if !ok {
		return false
	}
	c.notify(seq, result)
	return true
}

func (c *ConflictValidationController) store(result ValidationResult) (uint64, bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if result.Generation != c.generation.Load() {
		return 0, false
	}
	c.current = result
	c.seq++
	return c.seq, true
}

// notify hands a stored result to the subscriber. A result overtaken by a later store
// is skipped so subscribers never observe states out of order.
func (c *ConflictValidationController) notify(seq uint64, result ValidationResult) {
	if c.onChange == nil {
		return
	}
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if seq <= c.delivered {
		return
	}
	c.delivered = seq
	c.onChange(result)
}

func classifyCheck(gen uint64, resp *dto.ConflictCheckResponse, err error) ValidationResult {
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Status >= http.StatusBadRequest && appErr.Status < http.StatusInternalServerError {
			return ValidationResult{Generation: gen, State: ValidationInvalid, Details: appErr.Message, Err: err}
		}
		return ValidationResult{Generation: gen, State: ValidationUnverifiable, Details: "conflict check could not be completed", Err: err}
	}
	if resp == nil {
		return ValidationResult{Generation: gen, State: ValidationUnverifiable, Details: "conflict check returned no result", Err: errors.New("empty conflict check response")}
	}
	if resp.HasConflict {
		return ValidationResult{Generation: gen, State: ValidationConflict, Details: resp.Details, Conflicts: resp.Conflicts}
	}
	return ValidationResult{Generation: gen, State: ValidationClear}
}
