package services

import (
	"context"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	profileRepo    repositories.ProfileRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
}

func NewDashboardService(
	profileRepo repositories.ProfileRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
) DashboardService {
	return &dashboardService{
		profileRepo:    profileRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.profileRepo.Count(gCtx)
		stats.ProfilesTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.teamRepo.Count(gCtx)
		stats.TeamsTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.tournamentRepo.Count(gCtx, nil)
		stats.TournamentsTotal = count
		return err
	})
	g.Go(func() error {
		online := models.StatusOnlinePhase
		countOnline, err := s.tournamentRepo.Count(gCtx, &online)
		if err != nil {
			return err
		}
		presencial := models.StatusPresencialPhase
		countPresencial, err := s.tournamentRepo.Count(gCtx, &presencial)
		if err != nil {
			return err
		}
		stats.ActiveTournaments = countOnline + countPresencial
		return nil
	})
	g.Go(func() error {
		count, err := s.matchRepo.Count(gCtx, nil)
		stats.MatchesTotal = count
		return err
	})
	g.Go(func() error {
		finished := models.MatchFinished
		count, err := s.matchRepo.Count(gCtx, &finished)
		stats.FinishedMatches = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
