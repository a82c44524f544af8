package models

import "time"

type TeamMemberStatus string

const (
	MemberActive   TeamMemberStatus = "active"
	MemberInactive TeamMemberStatus = "inactive"
	MemberPending  TeamMemberStatus = "pending"
)

type Team struct {
	ID                  int       `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	GameID              int       `json:"game_id" db:"game_id"`
	CaptainID           int       `json:"captain_id" db:"captain_id"`
	Description         *string   `json:"description,omitempty" db:"description"`
	IsLookingForPlayers bool      `json:"is_looking_for_players" db:"is_looking_for_players"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Game    *Game        `json:"game,omitempty" db:"-"`
	Captain *Profile     `json:"captain,omitempty" db:"-"`
	Members []TeamMember `json:"members,omitempty" db:"-"`
}

type TeamMember struct {
	ID       int              `json:"id" db:"id"`
	TeamID   int              `json:"team_id" db:"team_id"`
	PlayerID int              `json:"player_id" db:"player_id"`
	Position *string          `json:"position,omitempty" db:"position"`
	Status   TeamMemberStatus `json:"status" db:"status"`
	JoinedAt time.Time        `json:"joined_at" db:"joined_at"`

	Player *Profile `json:"player,omitempty" db:"-"`
}
