package service

import (
	"sort"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

// ReconcileSessions merges persisted sessions with projected stubs keyed by calendar date.
// Persisted rows win verbatim; projected-only dates appear with a zero present count.
// Session numbers are never reassigned.
func ReconcileSessions(classID string, persisted []models.SessionInstance, projected []models.SessionStub, rosterSize int) []models.SessionInstance {
	byDate := make(map[string]models.SessionInstance, len(persisted)+len(projected))
	for _, session := range persisted {
		key := dateKey(session.SessionDate)
		if existing, ok := byDate[key]; ok && existing.SessionNumber <= session.SessionNumber {
			continue
		}
		session.Origin = models.SessionOriginPersisted
		session.SessionDate = models.DateOnly(session.SessionDate)
		byDate[key] = session
	}
	for _, stub := range projected {
		key := dateKey(stub.SessionDate)
		if _, ok := byDate[key]; ok {
			continue
		}
		byDate[key] = models.SessionInstance{
			ClassID:       classID,
			SessionNumber: stub.SessionNumber,
			SessionDate:   models.DateOnly(stub.SessionDate),
			Origin:        models.SessionOriginProjected,
			PresentCount:  0,
			TotalStudents: rosterSize,
		}
	}

	merged := make([]models.SessionInstance, 0, len(byDate))
	for _, session := range byDate {
		merged = append(merged, session)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].SessionDate.Equal(merged[j].SessionDate) {
			return merged[i].SessionDate.Before(merged[j].SessionDate)
		}
		return merged[i].SessionNumber < merged[j].SessionNumber
	})
	return merged
}
