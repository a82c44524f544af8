package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
	"github.com/JavierHEM/tarreo-oficial/storage"
)

type CreateTeamInput struct {
	Name                string  `json:"name"`
	GameID              int     `json:"game_id"`
	Description         *string `json:"description"`
	IsLookingForPlayers bool    `json:"is_looking_for_players"`
}

type AddMemberInput struct {
	PlayerID int     `json:"player_id"`
	Position *string `json:"position"`
}

type TeamService interface {
	Create(ctx context.Context, captainID int, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	AddMember(ctx context.Context, callerID, teamID int, input AddMemberInput) (*models.TeamMember, error)
	ActivateMember(ctx context.Context, callerID, teamID, memberID int) error
	UploadLogo(ctx context.Context, callerID, teamID int, contentType string, body io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	gameRepo repositories.GameRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{teamRepo: teamRepo, gameRepo: gameRepo, uploader: uploader, logger: logger}
}

func (s *teamService) Create(ctx context.Context, captainID int, input CreateTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}
	if _, err := s.gameRepo.GetGameByID(ctx, input.GameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", input.GameID, err)
	}

	team := &models.Team{
		Name:                input.Name,
		GameID:              input.GameID,
		CaptainID:           captainID,
		Description:         input.Description,
		IsLookingForPlayers: input.IsLookingForPlayers,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.logger.Info("team created", slog.Int("team_id", team.ID), slog.Int("captain_id", captainID))
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", id, err)
	}
	team.Members = make([]models.TeamMember, len(members))
	for i, m := range members {
		team.Members[i] = *m
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		s.populateLogoURL(t)
	}
	return teams, nil
}

// AddMember lets the captain attach a player to the roster directly, outside
// the invitation and join-request flows. New members start active.
func (s *teamService) AddMember(ctx context.Context, callerID, teamID int, input AddMemberInput) (*models.TeamMember, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.CaptainID != callerID {
		return nil, ErrCaptainActionRequired
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		PlayerID: input.PlayerID,
		Position: input.Position,
		Status:   models.MemberActive,
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberConflict) {
			return nil, ErrMemberConflict
		}
		return nil, fmt.Errorf("failed to add member to team %d: %w", teamID, err)
	}
	return member, nil
}

func (s *teamService) ActivateMember(ctx context.Context, callerID, teamID, memberID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if team.CaptainID != callerID {
		return ErrCaptainActionRequired
	}
	if err := s.teamRepo.UpdateMemberStatus(ctx, memberID, models.MemberActive); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, callerID, teamID int, contentType string, body io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageUnavailable
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.CaptainID != callerID {
		return nil, ErrCaptainActionRequired
	}

	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("teams/%d/logo%s", teamID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, err
	}
	team.LogoKey = &key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team.LogoKey == nil || *team.LogoKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}
