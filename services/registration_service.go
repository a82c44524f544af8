package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
)

// RegistrationService is the registration ledger: it decides whether a team
// may enter a tournament and records the entry.
type RegistrationService interface {
	Register(ctx context.Context, callerID, tournamentID, teamID int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error)
}

type registrationService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	teamRepo         repositories.TeamRepository
	gameRepo         repositories.GameRepository
	logger           *slog.Logger
}

func NewRegistrationService(
	db *sql.DB,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		db:               db,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		teamRepo:         teamRepo,
		gameRepo:         gameRepo,
		logger:           logger,
	}
}

// Register checks every precondition inside one transaction holding the
// tournament row lock, so concurrent registrations cannot overshoot the
// capacity. Preconditions: the caller is the team captain, the team plays
// the tournament's game, registration is open (status and wall clock), the
// team roster is complete for that game, the team is not already
// registered, and capacity is not exceeded. Filling the last slot closes
// registration in the same transaction.
func (s *registrationService) Register(ctx context.Context, callerID, tournamentID, teamID int) (*models.Registration, error) {
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

	game, err := s.gameRepo.GetGameByID(ctx, team.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %d: %w", team.GameID, err)
	}

	activeMembers, err := s.teamRepo.CountActiveMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active members of team %d: %w", teamID, err)
	}
	if activeMembers < game.MaxTeamSize {
		return nil, fmt.Errorf("%w: %d of %d active members", ErrTeamIncomplete, activeMembers, game.MaxTeamSize)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament %d: %w", tournamentID, err)
	}

	if tournament.GameID != team.GameID {
		return nil, ErrTeamGameMismatch
	}
	if tournament.Status != models.StatusRegistrationOpen {
		return nil, ErrRegistrationNotOpen
	}
	now := time.Now()
	if tournament.RegistrationEnd != nil && now.After(*tournament.RegistrationEnd) {
		return nil, ErrRegistrationNotOpen
	}

	count, err := s.registrationRepo.CountByTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if tournament.MaxTeams != nil && count >= *tournament.MaxTeams {
		return nil, ErrTournamentFull
	}

	registration := &models.Registration{TournamentID: tournamentID, TeamID: teamID}
	if err := s.registrationRepo.Create(ctx, tx, registration); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	// Capacity fill triggers immediate closure.
	if tournament.MaxTeams != nil && count+1 >= *tournament.MaxTeams {
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusRegistrationClosed); err != nil {
			return nil, fmt.Errorf("failed to close registration: %w", err)
		}
		s.logger.Info("tournament capacity reached, registration closed",
			slog.Int("tournament_id", tournamentID))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	s.logger.Info("team registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("team_id", teamID))
	return registration, nil
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	registrations, err := s.registrationRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	return registrations, nil
}
