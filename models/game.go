package models

import "time"

type Platform struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Game is a playable title. MaxTeamSize bounds the roster of every team
// competing in tournaments for this game.
type Game struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PlatformID  int       `json:"platform_id" db:"platform_id"`
	MaxTeamSize int       `json:"max_team_size" db:"max_team_size"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Platform *Platform `json:"platform,omitempty" db:"-"`
}
