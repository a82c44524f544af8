package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
)

type CreateGameInput struct {
	Name        string `json:"name"`
	PlatformID  int    `json:"platform_id"`
	MaxTeamSize int    `json:"max_team_size"`
}

type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error)
	GetGameByID(ctx context.Context, id int) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	CreatePlatform(ctx context.Context, name string) (*models.Platform, error)
	ListPlatforms(ctx context.Context) ([]*models.Platform, error)
}

type gameService struct {
	gameRepo repositories.GameRepository
}

func NewGameService(gameRepo repositories.GameRepository) GameService {
	return &gameService{gameRepo: gameRepo}
}

func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrValidationFailed)
	}
	if input.MaxTeamSize < 1 {
		return nil, ErrInvalidMaxTeamSize
	}

	game := &models.Game{
		Name:        input.Name,
		PlatformID:  input.PlatformID,
		MaxTeamSize: input.MaxTeamSize,
	}
	if err := s.gameRepo.CreateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

func (s *gameService) GetGameByID(ctx context.Context, id int) (*models.Game, error) {
	game, err := s.gameRepo.GetGameByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context) ([]*models.Game, error) {
	return s.gameRepo.ListGames(ctx)
}

func (s *gameService) CreatePlatform(ctx context.Context, name string) (*models.Platform, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: platform name is required", ErrValidationFailed)
	}
	platform := &models.Platform{Name: name}
	if err := s.gameRepo.CreatePlatform(ctx, platform); err != nil {
		return nil, fmt.Errorf("failed to create platform: %w", err)
	}
	return platform, nil
}

func (s *gameService) ListPlatforms(ctx context.Context) ([]*models.Platform, error) {
	return s.gameRepo.ListPlatforms(ctx)
}
