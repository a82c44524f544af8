package services

import (
	"time"

	"github.com/JavierHEM/tarreo-oficial/models"
)

// isValidStatusTransition encodes the monotonic tournament lifecycle.
// registration_closed and presencial_phase are skippable forward; nothing
// ever moves backwards.
func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusRegistrationOpen:   {models.StatusRegistrationClosed, models.StatusOnlinePhase},
		models.StatusRegistrationClosed: {models.StatusOnlinePhase},
		models.StatusOnlinePhase:        {models.StatusPresencialPhase, models.StatusFinished},
		models.StatusPresencialPhase:    {models.StatusFinished},
		models.StatusFinished:           {},
	}
	for _, s := range allowed[current] {
		if next == s {
			return true
		}
	}
	return false
}

func validateRegistrationWindow(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return ErrTournamentDatesInvalid
	}
	if end != nil && !start.Before(*end) {
		return ErrTournamentDatesInvalid
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
