package services

import (
	"context"
	"testing"
	"time"

	"github.com/JavierHEM/tarreo-oficial/brackets"
	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentService(tournamentRepo *fakeTournamentRepo, gameRepo *fakeGameRepo) TournamentService {
	return NewTournamentService(tournamentRepo, gameRepo, brackets.NewHub(testLogger()), testLogger())
}

func TestCreateTournament(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo()
	gameRepo := newFakeGameRepo()
	gameRepo.addGame(1, 5)
	service := newTournamentService(tournamentRepo, gameRepo)

	end := time.Now().Add(48 * time.Hour)
	tournament, err := service.Create(context.Background(), 7, CreateTournamentInput{
		Name:              "Tarreo Gamer UCT",
		GameID:            1,
		RegistrationStart: time.Now(),
		RegistrationEnd:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistrationOpen, tournament.Status)
	assert.Equal(t, 7, tournament.CreatedBy)
	assert.NotZero(t, tournament.ID)
}

func TestCreateTournamentValidation(t *testing.T) {
	gameRepo := newFakeGameRepo()
	gameRepo.addGame(1, 5)
	service := newTournamentService(newFakeTournamentRepo(), gameRepo)

	start := time.Now()
	endBeforeStart := start.Add(-time.Hour)
	smallCap := 1

	testCases := []struct {
		name     string
		input    CreateTournamentInput
		expected error
	}{
		{
			name:     "missing name",
			input:    CreateTournamentInput{GameID: 1, RegistrationStart: start},
			expected: ErrValidationFailed,
		},
		{
			name:     "end before start",
			input:    CreateTournamentInput{Name: "t", GameID: 1, RegistrationStart: start, RegistrationEnd: &endBeforeStart},
			expected: ErrTournamentDatesInvalid,
		},
		{
			name:     "capacity below two",
			input:    CreateTournamentInput{Name: "t", GameID: 1, RegistrationStart: start, MaxTeams: &smallCap},
			expected: ErrValidationFailed,
		},
		{
			name:     "unknown game",
			input:    CreateTournamentInput{Name: "t", GameID: 99, RegistrationStart: start},
			expected: ErrGameNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), 1, tc.input)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestAutoCloseExpiredRegistrations(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo()
	gameRepo := newFakeGameRepo()
	service := newTournamentService(tournamentRepo, gameRepo)

	expired := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	past := tournamentRepo.add(&models.Tournament{
		Status:          models.StatusRegistrationOpen,
		RegistrationEnd: &expired,
	})
	open := tournamentRepo.add(&models.Tournament{
		Status:          models.StatusRegistrationOpen,
		RegistrationEnd: &future,
	})
	noEnd := tournamentRepo.add(&models.Tournament{
		Status: models.StatusRegistrationOpen,
	})

	require.NoError(t, service.AutoCloseExpiredRegistrations(context.Background()))

	assert.Equal(t, models.StatusRegistrationClosed, tournamentRepo.tournaments[past.ID].Status)
	assert.Equal(t, models.StatusRegistrationOpen, tournamentRepo.tournaments[open.ID].Status)
	assert.Equal(t, models.StatusRegistrationOpen, tournamentRepo.tournaments[noEnd.ID].Status)
}
