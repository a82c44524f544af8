package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JavierHEM/tarreo-oficial/brackets"
	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
	"golang.org/x/sync/errgroup"
)

// BracketView groups a tournament's matches by round for rendering.
type BracketView struct {
	Tournament    *models.Tournament      `json:"tournament"`
	Registrations []*models.Registration  `json:"registrations"`
	Rounds        map[int][]*models.Match `json:"rounds"`
}

type BracketService interface {
	// GenerateBracket builds and persists round 1 for the tournament's
	// registered teams and moves the tournament into its online phase.
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	hub              *brackets.Hub
	notifications    NotificationService
	logger           *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	notifications NotificationService,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		hub:              hub,
		notifications:    notifications,
		logger:           logger,
	}
}

// GenerateBracket is idempotent per tournament: the tournament row lock plus
// the "no matches exist yet" check serialize concurrent organizer clicks,
// the second of which fails with ErrBracketAlreadyGenerated. Seeding is
// registration creation order; with an odd team count the first seed gets a
// bye, persisted as an already finished match.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
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

	if !isValidStatusTransition(tournament.Status, models.StatusOnlinePhase) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusOnlinePhase)
	}

	existing, err := s.matchRepo.CountByTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count existing matches: %w", err)
	}
	if existing > 0 {
		return nil, ErrBracketAlreadyGenerated
	}

	registrations, err := s.registrationRepo.ListByTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	if len(registrations) < 2 {
		return nil, ErrInsufficientTeams
	}

	teamIDs := make([]int, len(registrations))
	for i, reg := range registrations {
		teamIDs[i] = reg.TeamID
	}

	pairings, err := brackets.BuildFirstRound(teamIDs)
	if err != nil {
		if errors.Is(err, brackets.ErrInsufficientTeams) {
			return nil, ErrInsufficientTeams
		}
		return nil, fmt.Errorf("failed to build round 1: %w", err)
	}

	matches, err := s.persistRound(ctx, tx, tournament, 1, models.PhaseOnlineEliminations, pairings)
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusOnlinePhase); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket: %w", err)
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", len(teamIDs)),
		slog.Int("round1_matches", len(matches)),
		slog.Int("rounds_expected", brackets.NumRounds(len(teamIDs))))

	s.hub.BroadcastToRoom(brackets.RoomID(tournamentID), brackets.Message{
		Type:    brackets.EventBracketUpdated,
		Payload: matches,
	})
	s.notifications.NotifyPhaseChange(tournamentID, models.StatusOnlinePhase)

	return matches, nil
}

// persistRound stores the pairings of one round. Bye pairings are written
// already finished with the lone team as winner. Shared with the
// advancement path in MatchService via the package-level helper below.
func (s *bracketService) persistRound(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, round int, phase models.MatchPhase, pairings []brackets.Pairing) ([]*models.Match, error) {
	return persistRound(ctx, exec, s.matchRepo, tournament, round, phase, pairings)
}

func persistRound(ctx context.Context, exec repositories.SQLExecutor, matchRepo repositories.MatchRepository, tournament *models.Tournament, round int, phase models.MatchPhase, pairings []brackets.Pairing) ([]*models.Match, error) {
	matchDate := defaultMatchDate(tournament)

	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		match := &models.Match{
			TournamentID: tournament.ID,
			Team1ID:      p.Team1ID,
			Team2ID:      p.Team2ID,
			Phase:        phase,
			RoundNumber:  round,
			OrderInRound: p.OrderInRound,
			Status:       models.MatchScheduled,
			MatchDate:    matchDate,
		}
		if p.IsBye() {
			winner := p.Team1ID
			now := time.Now()
			match.Status = models.MatchFinished
			match.WinnerTeamID = &winner
			match.FinishedAt = &now
		}
		if err := matchRepo.Create(ctx, exec, match); err != nil {
			return nil, fmt.Errorf("failed to create round %d match %d: %w", round, p.OrderInRound, err)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func defaultMatchDate(t *models.Tournament) *time.Time {
	if t.OnlinePhaseStart != nil && t.OnlinePhaseStart.After(time.Now()) {
		return t.OnlinePhaseStart
	}
	return nil
}

// GetBracket assembles the tournament, its registrations, and its matches
// grouped by round, fetching the three in parallel.
func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	view := &BracketView{Rounds: make(map[int][]*models.Match)}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tournament, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
		}
		view.Tournament = tournament
		return nil
	})

	g.Go(func() error {
		registrations, err := s.registrationRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list registrations: %w", err)
		}
		view.Registrations = registrations
		return nil
	})

	var matches []*models.Match
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, nil, tournamentID, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, m := range matches {
		view.Rounds[m.RoundNumber] = append(view.Rounds[m.RoundNumber], m)
	}
	return view, nil
}
