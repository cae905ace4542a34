package service

import (
	"time"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

// DefaultHorizonDays bounds the calendar walk regardless of the session cap.
const DefaultHorizonDays = 366

// Materialization warnings.
const (
	WarningEmptyPattern     = "empty_pattern"
	WarningPatternDefaulted = "pattern_defaulted"
	WarningHorizonTruncated = "horizon_truncated"
)

// MaterializeOptions tunes the calendar walk.
type MaterializeOptions struct {
	HorizonDays int
	// Fallback is used when the pattern has no valid weekday. Nil means return nothing.
	Fallback models.WeeklyPattern
}

// MaterializeResult holds projected sessions and any corrections applied on the way.
type MaterializeResult struct {
	Stubs    []models.SessionStub
	Warnings []string
}

// MaterializeSessions projects a weekly pattern over an inclusive date range into numbered
// session stubs. A nil sessionCap leaves the count unbounded; the walk itself never exceeds
// the horizon.
func MaterializeSessions(activeRange models.DateRange, pattern models.WeeklyPattern, sessionCap *int, opts MaterializeOptions) MaterializeResult {
	var result MaterializeResult
	if activeRange.Empty() {
		return result
	}
	if sessionCap != nil && *sessionCap <= 0 {
		return result
	}

	days := pattern.Days()
	if len(days) == 0 {
		fallback := opts.Fallback.Days()
		if len(fallback) == 0 {
			result.Warnings = append(result.Warnings, WarningEmptyPattern)
			return result
		}
		days = fallback
		result.Warnings = append(result.Warnings, WarningPatternDefaulted)
	}

	horizon := opts.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}

	start := models.DateOnly(activeRange.Start)
	end := models.DateOnly(activeRange.End)
	day := start
	number := 0
	steps := 0
	for ; steps < horizon && !day.After(end); steps++ {
		if _, ok := days[models.Weekday(day.Weekday())]; ok {
			number++
			if sessionCap != nil && number > *sessionCap {
				return result
			}
			result.Stubs = append(result.Stubs, models.SessionStub{SessionNumber: number, SessionDate: day})
		}
		day = day.AddDate(0, 0, 1)
	}
	if steps == horizon && !day.After(end) {
		result.Warnings = append(result.Warnings, WarningHorizonTruncated)
	}
	return result
}

// findStub returns the projected stub carrying the given session number.
func findStub(stubs []models.SessionStub, number int) (models.SessionStub, bool) {
	for _, stub := range stubs {
		if stub.SessionNumber == number {
			return stub, true
		}
	}
	return models.SessionStub{}, false
}

func dateKey(t time.Time) string {
	return models.DateOnly(t).Format(models.DateLayout)
}
