package services

import (
	"context"
	"strings"
	"testing"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileRepo struct {
	nextID   int
	profiles map[int]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{nextID: 1, profiles: make(map[int]*models.Profile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	for _, existing := range r.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return repositories.ErrProfileEmailConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	copied := *p
	r.profiles[p.ID] = &copied
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range r.profiles {
		if strings.EqualFold(p.Email, email) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) ListLookingForTeam(ctx context.Context) ([]*models.Profile, error) {
	out := make([]*models.Profile, 0)
	for _, p := range r.profiles {
		if p.IsLookingForTeam {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) Count(ctx context.Context) (int, error) { return len(r.profiles), nil }

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeProfileRepo()
	service := NewAuthService(repo)

	profile, err := service.Register(context.Background(), RegisterInput{
		Email:    "gamer@uct.cl",
		Password: "super-secret",
		FullName: "Test Gamer",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleGamer, profile.Role)
	assert.Empty(t, profile.PasswordHash)

	loggedIn, err := service.Login(context.Background(), LoginInput{
		Email:    "gamer@uct.cl",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service := NewAuthService(newFakeProfileRepo())

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "gamer@uct.cl",
		Password: "short",
		FullName: "Test Gamer",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := NewAuthService(newFakeProfileRepo())

	input := RegisterInput{Email: "gamer@uct.cl", Password: "super-secret", FullName: "Test Gamer"}
	_, err := service.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = service.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmailConflict)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service := NewAuthService(newFakeProfileRepo())

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "gamer@uct.cl",
		Password: "super-secret",
		FullName: "Test Gamer",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), LoginInput{Email: "gamer@uct.cl", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = service.Login(context.Background(), LoginInput{Email: "nobody@uct.cl", Password: "super-secret"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
