package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Gamertag *string `json:"gamertag"`
	Carrera  *string `json:"carrera"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, input LoginInput) (*models.Profile, error)
	GetProfile(ctx context.Context, id int) (*models.Profile, error)
	ListLookingForTeam(ctx context.Context) ([]*models.Profile, error)
}

type authService struct {
	profileRepo repositories.ProfileRepository
}

func NewAuthService(profileRepo repositories.ProfileRepository) AuthService {
	return &authService{profileRepo: profileRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	if input.Email == "" || input.FullName == "" {
		return nil, fmt.Errorf("%w: email and full name are required", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Gamertag:     input.Gamertag,
		Carrera:      input.Carrera,
		Role:         models.RoleGamer,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrProfileEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) GetProfile(ctx context.Context, id int) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) ListLookingForTeam(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.profileRepo.ListLookingForTeam(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		p.PasswordHash = ""
	}
	return profiles, nil
}
