package models

import "time"

type NotificationType string

const (
	NotificationPhaseChange   NotificationType = "phase_change"
	NotificationMatchFinished NotificationType = "match_finished"
)

type TournamentSubscription struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	ProfileID    int       `json:"profile_id" db:"profile_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type TournamentNotification struct {
	ID           int              `json:"id" db:"id"`
	ProfileID    int              `json:"profile_id" db:"profile_id"`
	TournamentID int              `json:"tournament_id" db:"tournament_id"`
	Type         NotificationType `json:"type" db:"type"`
	Message      string           `json:"message" db:"message"`
	Read         bool             `json:"read" db:"read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
