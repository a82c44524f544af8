package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
// Transitions are monotonic through the declared sequence; a tournament
// never regresses to an earlier phase.
type TournamentStatus string

const (
	StatusRegistrationOpen   TournamentStatus = "registration_open"
	StatusRegistrationClosed TournamentStatus = "registration_closed"
	StatusOnlinePhase        TournamentStatus = "online_phase"
	StatusPresencialPhase    TournamentStatus = "presencial_phase"
	StatusFinished           TournamentStatus = "finished"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusRegistrationOpen, StatusRegistrationClosed, StatusOnlinePhase, StatusPresencialPhase, StatusFinished:
		return true
	}
	return false
}

type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Description       *string          `json:"description,omitempty" db:"description"`
	GameID            int              `json:"game_id" db:"game_id"`
	Status            TournamentStatus `json:"status" db:"status"`
	RegistrationStart time.Time        `json:"registration_start" db:"registration_start"`
	RegistrationEnd   *time.Time       `json:"registration_end,omitempty" db:"registration_end"`
	OnlinePhaseStart  *time.Time       `json:"online_phase_start,omitempty" db:"online_phase_start"`
	PresencialDate    *time.Time       `json:"presencial_date,omitempty" db:"presencial_date"`
	MaxTeams          *int             `json:"max_teams,omitempty" db:"max_teams"`
	CreatedBy         int              `json:"created_by" db:"created_by"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`

	Game          *Game          `json:"game,omitempty" db:"-"`
	Creator       *Profile       `json:"creator,omitempty" db:"-"`
	Registrations []Registration `json:"registrations,omitempty" db:"-"`
	Matches       []Match        `json:"matches,omitempty" db:"-"`
}
