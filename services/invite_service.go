package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
)

// Invitations expire after a week; the scheduler purges the stale ones.
const inviteDuration = 7 * 24 * time.Hour

type InvitePlayerInput struct {
	PlayerID int     `json:"player_id"`
	Message  *string `json:"message"`
}

type JoinRequestInput struct {
	Message *string `json:"message"`
}

// InviteService covers both directions of team recruitment: captains invite
// players, and players request to join teams that are looking for members.
// Acceptance on either path puts the player on the roster as active.
type InviteService interface {
	InvitePlayer(ctx context.Context, callerID, teamID int, input InvitePlayerInput) (*models.TeamInvitation, error)
	ListMyInvitations(ctx context.Context, profileID int) ([]*models.TeamInvitation, error)
	ListSentInvitations(ctx context.Context, inviterID int) ([]*models.TeamInvitation, error)
	RespondToInvitation(ctx context.Context, callerID, invitationID int, accept bool) (*models.TeamInvitation, error)

	RequestToJoin(ctx context.Context, callerID, teamID int, input JoinRequestInput) (*models.TeamJoinRequest, error)
	ListJoinRequests(ctx context.Context, callerID, teamID int) ([]*models.TeamJoinRequest, error)
	ReviewJoinRequest(ctx context.Context, callerID, requestID int, approve bool) (*models.TeamJoinRequest, error)

	PurgeExpiredInvitations(ctx context.Context) error
}

type inviteService struct {
	inviteRepo  repositories.InviteRepository
	teamRepo    repositories.TeamRepository
	profileRepo repositories.ProfileRepository
	logger      *slog.Logger
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	teamRepo repositories.TeamRepository,
	profileRepo repositories.ProfileRepository,
	logger *slog.Logger,
) InviteService {
	return &inviteService{
		inviteRepo:  inviteRepo,
		teamRepo:    teamRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

func (s *inviteService) InvitePlayer(ctx context.Context, callerID, teamID int, input InvitePlayerInput) (*models.TeamInvitation, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.CaptainID != callerID {
		return nil, ErrCaptainActionRequired
	}

	if _, err := s.profileRepo.GetByID(ctx, input.PlayerID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile %d: %w", input.PlayerID, err)
	}

	invitation := &models.TeamInvitation{
		TeamID:    teamID,
		InviterID: callerID,
		InviteeID: input.PlayerID,
		Message:   input.Message,
		Status:    models.InvitePending,
		ExpiresAt: time.Now().Add(inviteDuration),
	}
	if err := s.inviteRepo.CreateInvitation(ctx, invitation); err != nil {
		if errors.Is(err, repositories.ErrInviteConflict) {
			return nil, ErrInviteConflict
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.logger.Info("player invited to team",
		slog.Int("team_id", teamID),
		slog.Int("invitee_id", input.PlayerID))
	return invitation, nil
}

func (s *inviteService) ListMyInvitations(ctx context.Context, profileID int) ([]*models.TeamInvitation, error) {
	return s.inviteRepo.ListInvitationsForProfile(ctx, profileID)
}

func (s *inviteService) ListSentInvitations(ctx context.Context, inviterID int) ([]*models.TeamInvitation, error) {
	return s.inviteRepo.ListInvitationsSent(ctx, inviterID)
}

// RespondToInvitation settles a pending invitation with a check-and-set, so
// double responses and accept-after-decline races resolve to exactly one
// outcome. Accepting joins the invitee to the roster as an active member.
func (s *inviteService) RespondToInvitation(ctx context.Context, callerID, invitationID int, accept bool) (*models.TeamInvitation, error) {
	invitation, err := s.inviteRepo.GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to load invitation %d: %w", invitationID, err)
	}
	if invitation.InviteeID != callerID {
		return nil, ErrForbiddenOperation
	}
	if invitation.Expired(time.Now()) {
		return nil, ErrInviteExpired
	}

	status := models.InviteDeclined
	if accept {
		status = models.InviteAccepted
	}
	settled, err := s.inviteRepo.SettleInvitation(ctx, invitationID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to settle invitation %d: %w", invitationID, err)
	}
	if !settled {
		return nil, ErrInviteAlreadyHandled
	}
	invitation.Status = status

	if accept {
		member := &models.TeamMember{
			TeamID:   invitation.TeamID,
			PlayerID: callerID,
			Status:   models.MemberActive,
		}
		if err := s.teamRepo.AddMember(ctx, member); err != nil {
			if errors.Is(err, repositories.ErrTeamMemberConflict) {
				return nil, ErrMemberConflict
			}
			return nil, fmt.Errorf("failed to add invitee to team %d: %w", invitation.TeamID, err)
		}
		s.logger.Info("invitation accepted",
			slog.Int("invitation_id", invitationID),
			slog.Int("team_id", invitation.TeamID),
			slog.Int("player_id", callerID))
	}
	return invitation, nil
}

func (s *inviteService) RequestToJoin(ctx context.Context, callerID, teamID int, input JoinRequestInput) (*models.TeamJoinRequest, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if !team.IsLookingForPlayers {
		return nil, ErrTeamNotRecruiting
	}

	request := &models.TeamJoinRequest{
		TeamID:   teamID,
		PlayerID: callerID,
		Message:  input.Message,
		Status:   models.InvitePending,
	}
	if err := s.inviteRepo.CreateJoinRequest(ctx, request); err != nil {
		if errors.Is(err, repositories.ErrJoinRequestConflict) {
			return nil, ErrJoinRequestConflict
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return request, nil
}

func (s *inviteService) ListJoinRequests(ctx context.Context, callerID, teamID int) ([]*models.TeamJoinRequest, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.CaptainID != callerID {
		return nil, ErrCaptainActionRequired
	}
	return s.inviteRepo.ListJoinRequestsByTeam(ctx, teamID)
}

// ReviewJoinRequest lets the captain approve or reject a pending request.
// Approval puts the requester on the roster as an active member.
func (s *inviteService) ReviewJoinRequest(ctx context.Context, callerID, requestID int, approve bool) (*models.TeamJoinRequest, error) {
	request, err := s.inviteRepo.GetJoinRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to load join request %d: %w", requestID, err)
	}

	team, err := s.teamRepo.GetByID(ctx, request.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team %d: %w", request.TeamID, err)
	}
	if team.CaptainID != callerID {
		return nil, ErrCaptainActionRequired
	}

	status := models.InviteDeclined
	if approve {
		status = models.InviteAccepted
	}
	settled, err := s.inviteRepo.SettleJoinRequest(ctx, requestID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to settle join request %d: %w", requestID, err)
	}
	if !settled {
		return nil, ErrJoinRequestHandled
	}
	request.Status = status

	if approve {
		member := &models.TeamMember{
			TeamID:   request.TeamID,
			PlayerID: request.PlayerID,
			Status:   models.MemberActive,
		}
		if err := s.teamRepo.AddMember(ctx, member); err != nil {
			if errors.Is(err, repositories.ErrTeamMemberConflict) {
				return nil, ErrMemberConflict
			}
			return nil, fmt.Errorf("failed to add player to team %d: %w", request.TeamID, err)
		}
		s.logger.Info("join request approved",
			slog.Int("request_id", requestID),
			slog.Int("team_id", request.TeamID),
			slog.Int("player_id", request.PlayerID))
	}
	return request, nil
}

func (s *inviteService) PurgeExpiredInvitations(ctx context.Context) error {
	purged, err := s.inviteRepo.DeleteExpiredInvitations(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to purge expired invitations: %w", err)
	}
	if purged > 0 {
		s.logger.Info("expired invitations purged", slog.Int64("count", purged))
	}
	return nil
}
