package models

import "time"

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchInProgress, MatchFinished:
		return true
	}
	return false
}

// MatchPhase tags the broad stage a match belongs to, orthogonal to
// round numbering.
type MatchPhase string

const (
	PhaseOnlineEliminations     MatchPhase = "online_eliminations"
	PhasePresencialEliminations MatchPhase = "presencial_eliminations"
	PhaseFinal                  MatchPhase = "final"
)

// Match is one node of a single-elimination bracket. Team2ID is nil for a
// bye; a bye is stored already finished with WinnerTeamID = Team1ID.
// WinnerTeamID is set if and only if Status is finished.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Team1ID      int         `json:"team1_id" db:"team1_id"`
	Team2ID      *int        `json:"team2_id,omitempty" db:"team2_id"`
	Phase        MatchPhase  `json:"phase" db:"phase"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	OrderInRound int         `json:"order_in_round" db:"order_in_round"`
	Status       MatchStatus `json:"status" db:"status"`
	Team1Score   *int        `json:"team1_score,omitempty" db:"team1_score"`
	Team2Score   *int        `json:"team2_score,omitempty" db:"team2_score"`
	WinnerTeamID *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	MatchDate    *time.Time  `json:"match_date,omitempty" db:"match_date"`
	FinishedAt   *time.Time  `json:"finished_at,omitempty" db:"finished_at"`
	Notes        *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	Team1Name *string `json:"team1_name,omitempty" db:"-"`
	Team2Name *string `json:"team2_name,omitempty" db:"-"`
}

func (m *Match) IsBye() bool {
	return m.Team2ID == nil
}
