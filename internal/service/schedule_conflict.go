package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

// ConflictResult is the outcome of comparing two schedules of the same trainer.
type ConflictResult struct {
	HasConflict bool
	Window      models.DateRange
	Overlaps    []models.SlotOverlap
}

// DetectConflict reports whether two schedule descriptors collide. Detection is scoped to a
// single trainer: descriptors for different trainers never conflict.
func DetectConflict(a, b models.ScheduleDescriptor) ConflictResult {
	if a.TrainerID != b.TrainerID {
		return ConflictResult{}
	}
	window, ok := a.Range.Intersect(b.Range)
	if !ok {
		return ConflictResult{}
	}

	var overlaps []models.SlotOverlap
	for _, slotA := range a.Pattern {
		if slotA.Validate() != nil {
			continue
		}
		for _, slotB := range b.Pattern {
			if slotB.Validate() != nil {
				continue
			}
			if slotA.Overlaps(slotB) {
				overlaps = append(overlaps, models.SlotOverlap{Candidate: slotA, Existing: slotB})
			}
		}
	}
	if len(overlaps) == 0 {
		return ConflictResult{}
	}
	return ConflictResult{HasConflict: true, Window: window, Overlaps: overlaps}
}

// DetectConflicts compares a candidate against existing assignments. The assignment named by
// excludeID and every other version of the candidate's own class are skipped so an edit is
// never reported as colliding with itself.
func DetectConflicts(candidate models.ScheduleDescriptor, existing []models.ClassAssignment, excludeID string) []models.ScheduleConflict {
	var conflicts []models.ScheduleConflict
	for _, assignment := range existing {
		if excludeID != "" && assignment.ID == excludeID {
			continue
		}
		if candidate.ClassID != "" && assignment.ClassID == candidate.ClassID {
			continue
		}
		result := DetectConflict(candidate, assignment.Descriptor())
		if !result.HasConflict {
			continue
		}
		conflicts = append(conflicts, models.ScheduleConflict{
			AssignmentID: assignment.ID,
			ClassID:      assignment.ClassID,
			TrainerID:    assignment.TrainerID,
			Window:       result.Window,
			Overlaps:     result.Overlaps,
		})
	}
	return conflicts
}

// DescribeConflicts renders a human-readable explanation of the collisions.
func DescribeConflicts(conflicts []models.ScheduleConflict) string {
	if len(conflicts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(conflicts))
	for _, conflict := range conflicts {
		pairs := make([]string, 0, len(conflict.Overlaps))
		for _, overlap := range conflict.Overlaps {
			pairs = append(pairs, fmt.Sprintf("%s overlaps %s", overlap.Candidate, overlap.Existing))
		}
		lines = append(lines, fmt.Sprintf("trainer %s already teaches class %s between %s and %s: %s",
			conflict.TrainerID,
			conflict.ClassID,
			conflict.Window.Start.Format(models.DateLayout),
			conflict.Window.End.Format(models.DateLayout),
			strings.Join(pairs, "; "),
		))
	}
	return strings.Join(lines, "\n")
}
