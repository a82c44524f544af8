package models

import "time"

type ProfileRole string

const (
	RoleAdmin ProfileRole = "admin"
	RoleGamer ProfileRole = "gamer"
)

type Profile struct {
	ID               int         `json:"id"`
	Email            string      `json:"email"`
	PasswordHash     string      `json:"-"`
	FullName         string      `json:"full_name"`
	Gamertag         *string     `json:"gamertag,omitempty"`
	Carrera          *string     `json:"carrera,omitempty"`
	Role             ProfileRole `json:"role"`
	PreferredGames   *string     `json:"preferred_games,omitempty"`
	IsLookingForTeam bool        `json:"is_looking_for_team"`
	CreatedAt        time.Time   `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
