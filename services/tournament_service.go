package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JavierHEM/tarreo-oficial/brackets"
	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
)

type CreateTournamentInput struct {
	Name              string     `json:"name"`
	Description       *string    `json:"description"`
	GameID            int        `json:"game_id"`
	RegistrationStart time.Time  `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`
	OnlinePhaseStart  *time.Time `json:"online_phase_start"`
	PresencialDate    *time.Time `json:"presencial_date"`
	MaxTeams          *int       `json:"max_teams"`
}

type TournamentService interface {
	Create(ctx context.Context, creatorID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	// AutoCloseExpiredRegistrations enforces registration windows by wall
	// clock. Run periodically by the scheduler in cmd.
	AutoCloseExpiredRegistrations(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, creatorID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if err := validateRegistrationWindow(input.RegistrationStart, input.RegistrationEnd); err != nil {
		return nil, err
	}
	if input.MaxTeams != nil && *input.MaxTeams < 2 {
		return nil, fmt.Errorf("%w: max_teams must be at least 2", ErrValidationFailed)
	}

	if _, err := s.gameRepo.GetGameByID(ctx, input.GameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", input.GameID, err)
	}

	tournament := &models.Tournament{
		Name:              input.Name,
		Description:       input.Description,
		GameID:            input.GameID,
		Status:            models.StatusRegistrationOpen,
		RegistrationStart: input.RegistrationStart,
		RegistrationEnd:   input.RegistrationEnd,
		OnlinePhaseStart:  input.OnlinePhaseStart,
		PresencialDate:    input.PresencialDate,
		MaxTeams:          input.MaxTeams,
		CreatedBy:         creatorID,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("name", tournament.Name),
		slog.Int("creator_id", creatorID))
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if game, err := s.gameRepo.GetGameByID(ctx, tournament.GameID); err == nil {
		tournament.Game = game
	} else {
		s.logger.Warn("failed to populate tournament game",
			slog.Int("tournament_id", id),
			slog.Int("game_id", tournament.GameID),
			slog.Any("error", err))
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) AutoCloseExpiredRegistrations(ctx context.Context) error {
	ids, err := s.tournamentRepo.CloseExpiredRegistrations(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.logger.Info("registration window expired, tournament closed", slog.Int("tournament_id", id))
		s.hub.BroadcastToRoom(brackets.RoomID(id), brackets.Message{
			Type:    brackets.EventTournamentStatus,
			Payload: models.StatusRegistrationClosed,
		})
	}
	return nil
}
