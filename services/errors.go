package services

import "errors"

// Sentinel errors shared across services and mapped to HTTP status codes in
// the handlers package. Everything here is recoverable: the caller gets a
// typed error, surfaces it, and must not blindly retry mutating calls.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTeamIncomplete         = errors.New("team roster is not complete for this game")
	ErrTeamGameMismatch       = errors.New("team does not play the tournament's game")
	ErrInvalidScore           = errors.New("scores must be non-negative integers")
	ErrInvalidWinner          = errors.New("winner must be one of the two match participants")
	ErrInvalidMaxTeamSize     = errors.New("game max team size must be positive")
	ErrTournamentDatesInvalid = errors.New("tournament registration window is invalid")

	// State conflicts
	ErrRegistrationNotOpen     = errors.New("tournament registration is not open")
	ErrTournamentFull          = errors.New("tournament has reached its team capacity")
	ErrBracketAlreadyGenerated = errors.New("bracket has already been generated for this tournament")
	ErrInsufficientTeams       = errors.New("at least two registered teams are required to generate a bracket")
	ErrMatchAlreadyFinished    = errors.New("match result has already been recorded")
	ErrMatchNotStartable       = errors.New("only a scheduled match can be moved to in_progress")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrInviteExpired           = errors.New("invitation has expired")
	ErrInviteAlreadyHandled    = errors.New("invitation has already been accepted or declined")
	ErrJoinRequestHandled      = errors.New("join request has already been reviewed")
	ErrTeamNotRecruiting       = errors.New("team is not looking for players")

	// Infrastructure
	ErrLogoStorageUnavailable = errors.New("logo storage is not configured")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCaptainActionRequired  = errors.New("only the team captain can perform this action")

	// Entity-specific not-found (more context than the generic ErrNotFound)
	ErrProfileNotFound      = errors.New("profile not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrGameNotFound         = errors.New("game not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInviteNotFound       = errors.New("invitation not found")
	ErrJoinRequestNotFound  = errors.New("join request not found")

	// Conflicts
	ErrEmailConflict        = errors.New("email address is already in use")
	ErrTeamNameConflict     = errors.New("team name is already in use")
	ErrRegistrationConflict = errors.New("team is already registered for this tournament")
	ErrAlreadySubscribed    = errors.New("already subscribed to this tournament")
	ErrMemberConflict       = errors.New("player is already a member of this team")
	ErrInviteConflict       = errors.New("player already has a pending invitation from this team")
	ErrJoinRequestConflict  = errors.New("player already has a pending join request for this team")
)
