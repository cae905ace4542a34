package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

func day(raw string) time.Time {
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(v int) *int { return &v }

func slot(d models.Weekday, start, end string) models.TimeSlot {
	s, err := models.ParseClockTime(start)
	if err != nil {
		panic(err)
	}
	e, err := models.ParseClockTime(end)
	if err != nil {
		panic(err)
	}
	return models.TimeSlot{DayOfWeek: d, StartTime: s, EndTime: e}
}

func TestMaterializeSessionsMondayWednesday(t *testing.T) {
	pattern := models.WeeklyPattern{slot(1, "19:00", "21:00"), slot(3, "19:00", "21:00")}
	result := MaterializeSessions(models.NewDateRange(day("2024-01-01"), day("2024-01-10")), pattern, intPtr(10), MaterializeOptions{})

	require.Len(t, result.Stubs, 4)
	expected := []string{"2024-01-01", "2024-01-03", "2024-01-08", "2024-01-10"}
	for i, stub := range result.Stubs {
		assert.Equal(t, i+1, stub.SessionNumber)
		assert.Equal(t, expected[i], stub.SessionDate.Format(models.DateLayout))
	}
	assert.Empty(t, result.Warnings)
}

func TestMaterializeSessionsRespectsCap(t *testing.T) {
	pattern := models.WeeklyPattern{slot(1, "07:00", "08:00")}
	result := MaterializeSessions(models.NewDateRange(day("2024-01-01"), day("2024-12-31")), pattern, intPtr(3), MaterializeOptions{})

	require.Len(t, result.Stubs, 3)
	assert.Equal(t, "2024-01-15", result.Stubs[2].SessionDate.Format(models.DateLayout))
}

func TestMaterializeSessionsEmptyInputs(t *testing.T) {
	pattern := models.WeeklyPattern{slot(1, "07:00", "08:00")}

	t.Run("zero cap", func(t *testing.T) {
		result := MaterializeSessions(models.NewDateRange(day("2024-01-01"), day("2024-01-31")), pattern, intPtr(0), MaterializeOptions{})
		assert.Empty(t, result.Stubs)
	})

	t.Run("inverted range", func(t *testing.T) {
		result := MaterializeSessions(models.NewDateRange(day("2024-02-01"), day("2024-01-01")), pattern, nil, MaterializeOptions{})
		assert.Empty(t, result.Stubs)
		assert.Empty(t, result.Warnings)
	})

	t.Run("empty pattern without fallback", func(t *testing.T) {
		result := MaterializeSessions(models.NewDateRange(day("2024-01-01"), day("2024-01-31")), nil, nil, MaterializeOptions{})
		assert.Empty(t, result.Stubs)
		assert.Equal(t, []string{WarningEmptyPattern}, result.Warnings)
	})

	t.Run("invalid weekdays only", func(t *testing.T) {
		broken := models.WeeklyPattern{{DayOfWeek: 9, StartTime: 60, EndTime: 120}}
		result := MaterializeSessions(models.NewDateRange(day("2024-01-01"), day("2024-01-31")), broken, nil, MaterializeOptions{})
		assert.Empty(t, result.Stubs)
	})
}

func TestMaterializeSessionsFallbackPattern(t *testing.T) {
	fallback := models.WeeklyPattern{slot(2, "18:00", "19:00")}
	result := MaterializeSessions(models.NewDateRange(day("2024-01-01"), day("2024-01-14")), nil, nil, MaterializeOptions{Fallback: fallback})

	require.Len(t, result.Stubs, 2)
	assert.Equal(t, "2024-01-02", result.Stubs[0].SessionDate.Format(models.DateLayout))
	assert.Equal(t, "2024-01-09", result.Stubs[1].SessionDate.Format(models.DateLayout))
	assert.Equal(t, []string{WarningPatternDefaulted}, result.Warnings)
}

func TestMaterializeSessionsHorizonTruncates(t *testing.T) {
	pattern := models.WeeklyPattern{slot(1, "07:00", "08:00")}
	result := MaterializeSessions(models.NewDateRange(day("2024-01-01"), day("2030-01-01")), pattern, nil, MaterializeOptions{HorizonDays: 14})

	require.Len(t, result.Stubs, 2)
	assert.Equal(t, []string{WarningHorizonTruncated}, result.Warnings)
}

func TestMaterializeSessionsProperties(t *testing.T) {
	pattern := models.WeeklyPattern{slot(0, "09:00", "10:00"), slot(3, "09:00", "10:00"), slot(3, "18:00", "19:00"), slot(5, "07:00", "08:00")}
	active := models.NewDateRange(day("2024-03-01"), day("2024-06-30"))
	result := MaterializeSessions(active, pattern, nil, MaterializeOptions{})

	require.NotEmpty(t, result.Stubs)
	days := pattern.Days()
	for i, stub := range result.Stubs {
		assert.Equal(t, i+1, stub.SessionNumber)
		assert.True(t, active.Contains(stub.SessionDate))
		_, ok := days[models.Weekday(stub.SessionDate.Weekday())]
		assert.True(t, ok, "unexpected weekday %s", stub.SessionDate.Weekday())
		if i > 0 {
			assert.True(t, stub.SessionDate.After(result.Stubs[i-1].SessionDate), "dates must strictly increase")
		}
	}

	again := MaterializeSessions(active, pattern, nil, MaterializeOptions{})
	assert.Equal(t, result, again)
}
