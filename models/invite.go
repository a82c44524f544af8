package models

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// TeamInvitation is a captain-issued offer to a specific player. It stays
// pending until the player responds or it expires.
type TeamInvitation struct {
	ID        int          `json:"id" db:"id"`
	TeamID    int          `json:"team_id" db:"team_id"`
	InviterID int          `json:"inviter_id" db:"inviter_id"`
	InviteeID int          `json:"invitee_id" db:"invitee_id"`
	Message   *string      `json:"message,omitempty" db:"message"`
	Status    InviteStatus `json:"status" db:"status"`
	ExpiresAt time.Time    `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`

	TeamName        string  `json:"team_name,omitempty" db:"-"`
	InviterGamertag *string `json:"inviter_gamertag,omitempty" db:"-"`
}

func (i *TeamInvitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// TeamJoinRequest is the player-initiated counterpart: a request to join a
// team that is recruiting, reviewed by the captain.
type TeamJoinRequest struct {
	ID        int          `json:"id" db:"id"`
	TeamID    int          `json:"team_id" db:"team_id"`
	PlayerID  int          `json:"player_id" db:"player_id"`
	Message   *string      `json:"message,omitempty" db:"message"`
	Status    InviteStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`

	PlayerGamertag *string `json:"player_gamertag,omitempty" db:"-"`
}
