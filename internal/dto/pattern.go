package dto

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

var dayAliases = map[string]models.Weekday{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

// ParseLegacyPattern turns "Mon: 19:00-21:00, Wed: 19:00-21:00" into structured slots.
// A token may name several days separated by "/" ("Mon/Wed: 19:00-21:00").
func ParseLegacyPattern(text string) (models.WeeklyPattern, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("schedule text is empty")
	}
	var pattern models.WeeklyPattern
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		dayPart, timePart, ok := strings.Cut(token, ":")
		if !ok {
			return nil, fmt.Errorf("token %q: expected \"Day: HH:MM-HH:MM\"", token)
		}
		start, end, err := parseTimeRange(timePart)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", token, err)
		}
		for _, rawDay := range strings.Split(dayPart, "/") {
			day, ok := dayAliases[strings.ToLower(strings.TrimSpace(rawDay))]
			if !ok {
				return nil, fmt.Errorf("token %q: unknown day %q", token, strings.TrimSpace(rawDay))
			}
			pattern = append(pattern, models.TimeSlot{DayOfWeek: day, StartTime: start, EndTime: end})
		}
	}
	if len(pattern) == 0 {
		return nil, fmt.Errorf("schedule text %q has no slots", text)
	}
	return pattern, nil
}

func parseTimeRange(raw string) (models.ClockTime, models.ClockTime, error) {
	raw = strings.NewReplacer("–", "-", "—", "-").Replace(raw)
	startRaw, endRaw, ok := strings.Cut(raw, "-")
	if !ok {
		return 0, 0, fmt.Errorf("expected HH:MM-HH:MM, got %q", strings.TrimSpace(raw))
	}
	start, err := models.ParseClockTime(startRaw)
	if err != nil {
		return 0, 0, err
	}
	end, err := models.ParseClockTime(endRaw)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Pattern resolves the input into a weekly pattern without normalizing it.
func (p PatternInput) Pattern() (models.WeeklyPattern, error) {
	if len(p.Slots) > 0 {
		pattern := make(models.WeeklyPattern, 0, len(p.Slots))
		for _, slot := range p.Slots {
			if slot.DayOfWeek == nil {
				return nil, fmt.Errorf("dayOfWeek is required")
			}
			start, err := models.ParseClockTime(slot.StartTime)
			if err != nil {
				return nil, err
			}
			end, err := models.ParseClockTime(slot.EndTime)
			if err != nil {
				return nil, err
			}
			pattern = append(pattern, models.TimeSlot{DayOfWeek: models.Weekday(*slot.DayOfWeek), StartTime: start, EndTime: end})
		}
		return pattern, nil
	}
	if strings.TrimSpace(p.ScheduleText) != "" {
		return ParseLegacyPattern(p.ScheduleText)
	}
	return nil, fmt.Errorf("either slots or scheduleText is required")
}
