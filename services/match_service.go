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
)

type RecordResultInput struct {
	Team1Score   int `json:"team1_score"`
	Team2Score   int `json:"team2_score"`
	WinnerTeamID int `json:"winner_team_id"`
}

type MatchService interface {
	// RecordResult validates and applies a reported result, then runs the
	// advancement propagator for the match's round.
	RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error)
	StartMatch(ctx context.Context, matchID int) (*models.Match, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	hub            *brackets.Hub
	notifications  NotificationService
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *brackets.Hub,
	notifications NotificationService,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
		notifications:  notifications,
		logger:         logger,
	}
}

func (s *matchService) RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	if input.Team1Score < 0 || input.Team2Score < 0 {
		return nil, ErrInvalidScore
	}
	if input.WinnerTeamID != match.Team1ID && (match.Team2ID == nil || input.WinnerTeamID != *match.Team2ID) {
		return nil, ErrInvalidWinner
	}
	if match.Status == models.MatchFinished {
		return nil, ErrMatchAlreadyFinished
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The tournament row lock serializes result recording against bracket
	// generation and against concurrent advancement of the same round.
	tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock tournament %d: %w", match.TournamentID, err)
	}

	finishedAt := time.Now()
	applied, err := s.matchRepo.FinishIfUnfinished(ctx, tx, matchID, input.Team1Score, input.Team2Score, input.WinnerTeamID, finishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record result for match %d: %w", matchID, err)
	}
	if !applied {
		return nil, ErrMatchAlreadyFinished
	}

	advanced, err := s.advanceRound(ctx, tx, tournament, match.RoundNumber)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit result: %w", err)
	}

	match.Status = models.MatchFinished
	match.Team1Score = &input.Team1Score
	match.Team2Score = &input.Team2Score
	match.WinnerTeamID = &input.WinnerTeamID
	match.FinishedAt = &finishedAt

	s.logger.Info("match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("round", match.RoundNumber),
		slog.Int("winner_team_id", input.WinnerTeamID))

	room := brackets.RoomID(match.TournamentID)
	s.hub.BroadcastToRoom(room, brackets.Message{Type: brackets.EventMatchResult, Payload: match})
	s.notifications.NotifyMatchFinished(match)

	switch advanced {
	case advancedNextRound:
		s.hub.BroadcastToRoom(room, brackets.Message{Type: brackets.EventBracketUpdated, Payload: nil})
	case advancedPresencial:
		s.hub.BroadcastToRoom(room, brackets.Message{Type: brackets.EventTournamentStatus, Payload: models.StatusPresencialPhase})
		s.notifications.NotifyPhaseChange(match.TournamentID, models.StatusPresencialPhase)
	case advancedFinished:
		s.hub.BroadcastToRoom(room, brackets.Message{Type: brackets.EventTournamentStatus, Payload: models.StatusFinished})
		s.notifications.NotifyPhaseChange(match.TournamentID, models.StatusFinished)
	}

	return match, nil
}

type advancement int

const (
	advancedNothing advancement = iota
	advancedNextRound
	advancedPresencial
	advancedFinished
)

// advanceRound is the advancement propagator. Called with the tournament
// row locked. If the round is fully finished it either closes out the
// tournament (single-match round) or creates round+1 from the winners in
// bracket order. The "next round already exists" check makes concurrent
// last-result submissions create it exactly once.
func (s *matchService) advanceRound(ctx context.Context, tx *sql.Tx, tournament *models.Tournament, round int) (advancement, error) {
	roundMatches, err := s.matchRepo.ListByTournament(ctx, tx, tournament.ID, &round, nil)
	if err != nil {
		return advancedNothing, fmt.Errorf("failed to list round %d matches: %w", round, err)
	}

	for _, m := range roundMatches {
		if m.Status != models.MatchFinished {
			return advancedNothing, nil
		}
	}

	if len(roundMatches) == 1 {
		// The final has concluded.
		if !isValidStatusTransition(tournament.Status, models.StatusFinished) {
			return advancedNothing, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusFinished)
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournament.ID, models.StatusFinished); err != nil {
			return advancedNothing, fmt.Errorf("failed to finish tournament %d: %w", tournament.ID, err)
		}
		return advancedFinished, nil
	}

	nextRound := round + 1
	existing, err := s.matchRepo.ListByTournament(ctx, tx, tournament.ID, &nextRound, nil)
	if err != nil {
		return advancedNothing, fmt.Errorf("failed to check round %d: %w", nextRound, err)
	}
	if len(existing) > 0 {
		return advancedNothing, nil
	}

	winners := make([]int, 0, len(roundMatches))
	for _, m := range roundMatches {
		if m.WinnerTeamID == nil {
			return advancedNothing, fmt.Errorf("finished match %d has no winner", m.ID)
		}
		winners = append(winners, *m.WinnerTeamID)
	}

	pairings := brackets.PairWinners(winners)

	phase := roundMatches[0].Phase
	result := advancedNextRound
	if len(pairings) == 1 {
		phase = models.PhaseFinal
		if tournament.PresencialDate != nil && isValidStatusTransition(tournament.Status, models.StatusPresencialPhase) {
			if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournament.ID, models.StatusPresencialPhase); err != nil {
				return advancedNothing, fmt.Errorf("failed to move tournament %d to presencial phase: %w", tournament.ID, err)
			}
			result = advancedPresencial
		}
	}

	created, err := persistRound(ctx, tx, s.matchRepo, tournament, nextRound, phase, pairings)
	if err != nil {
		return advancedNothing, err
	}

	s.logger.Info("next round created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("round", nextRound),
		slog.Int("matches", len(created)),
		slog.String("phase", string(phase)))

	return result, nil
}

// StartMatch relies on the conditional update rather than a read-then-write
// status check, so a concurrently recorded result can never be regressed to
// in_progress.
func (s *matchService) StartMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	started, err := s.matchRepo.StartIfScheduled(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to start match %d: %w", matchID, err)
	}
	if !started {
		return nil, ErrMatchNotStartable
	}
	match.Status = models.MatchInProgress
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, round, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}
