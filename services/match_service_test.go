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

type matchFixture struct {
	bracketService BracketService
	matchService   MatchService
	tournamentRepo *fakeTournamentRepo
	regRepo        *fakeRegistrationRepo
	matchRepo      *fakeMatchRepo
	notifications  *fakeNotifications
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	f := &matchFixture{
		tournamentRepo: newFakeTournamentRepo(),
		regRepo:        newFakeRegistrationRepo(),
		matchRepo:      newFakeMatchRepo(),
		notifications:  &fakeNotifications{},
	}
	db := newTestDB(t)
	hub := brackets.NewHub(testLogger())
	f.bracketService = NewBracketService(db, f.tournamentRepo, f.regRepo, f.matchRepo, hub, f.notifications, testLogger())
	f.matchService = NewMatchService(db, f.matchRepo, f.tournamentRepo, hub, f.notifications, testLogger())
	return f
}

// startTournament registers the teams and generates round 1.
func (f *matchFixture) startTournament(t *testing.T, presencialDate *time.Time, teamIDs ...int) *models.Tournament {
	t.Helper()
	tournament := f.tournamentRepo.add(&models.Tournament{
		Name:              "Tarreo Gamer",
		GameID:            1,
		Status:            models.StatusRegistrationClosed,
		RegistrationStart: time.Now().Add(-24 * time.Hour),
		PresencialDate:    presencialDate,
	})
	for _, teamID := range teamIDs {
		require.NoError(t, f.regRepo.Create(context.Background(), nil, &models.Registration{
			TournamentID: tournament.ID,
			TeamID:       teamID,
		}))
	}
	_, err := f.bracketService.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	return tournament
}

// findMatch locates the match of a given round pairing team1 (and team2
// when not a bye).
func (f *matchFixture) findMatch(t *testing.T, tournamentID, round, team1 int) *models.Match {
	t.Helper()
	matches, err := f.matchRepo.ListByTournament(context.Background(), nil, tournamentID, &round, nil)
	require.NoError(t, err)
	for _, m := range matches {
		if m.Team1ID == team1 {
			return m
		}
	}
	t.Fatalf("no round %d match with team1 %d", round, team1)
	return nil
}

func TestRecordResultRejectsInvalidWinner(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4)
	match := f.findMatch(t, tournament.ID, 1, 1)

	_, err := f.matchService.RecordResult(context.Background(), match.ID, RecordResultInput{
		Team1Score: 2, Team2Score: 1, WinnerTeamID: 99,
	})
	assert.ErrorIs(t, err, ErrInvalidWinner)
}

func TestRecordResultRejectsNegativeScores(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4)
	match := f.findMatch(t, tournament.ID, 1, 1)

	_, err := f.matchService.RecordResult(context.Background(), match.ID, RecordResultInput{
		Team1Score: -1, Team2Score: 1, WinnerTeamID: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestRecordResultRejectsDoubleSubmission(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4)
	match := f.findMatch(t, tournament.ID, 1, 1)

	_, err := f.matchService.RecordResult(context.Background(), match.ID, RecordResultInput{
		Team1Score: 2, Team2Score: 0, WinnerTeamID: 1,
	})
	require.NoError(t, err)

	_, err = f.matchService.RecordResult(context.Background(), match.ID, RecordResultInput{
		Team1Score: 0, Team2Score: 2, WinnerTeamID: 2,
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)

	// The first result stands.
	stored, err := f.matchRepo.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *stored.WinnerTeamID)
}

func TestRecordResultDoesNotAdvanceIncompleteRound(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4)
	match := f.findMatch(t, tournament.ID, 1, 1)

	_, err := f.matchService.RecordResult(context.Background(), match.ID, RecordResultInput{
		Team1Score: 2, Team2Score: 0, WinnerTeamID: 1,
	})
	require.NoError(t, err)

	round2 := 2
	matches, err := f.matchRepo.ListByTournament(context.Background(), nil, tournament.ID, &round2, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRecordResultCreatesFinalAndPresencialPhase(t *testing.T) {
	f := newMatchFixture(t)
	presencial := time.Now().Add(48 * time.Hour)
	tournament := f.startTournament(t, &presencial, 1, 2, 3, 4)

	_, err := f.matchService.RecordResult(context.Background(), f.findMatch(t, tournament.ID, 1, 1).ID,
		RecordResultInput{Team1Score: 2, Team2Score: 0, WinnerTeamID: 1})
	require.NoError(t, err)
	_, err = f.matchService.RecordResult(context.Background(), f.findMatch(t, tournament.ID, 1, 3).ID,
		RecordResultInput{Team1Score: 1, Team2Score: 2, WinnerTeamID: 4})
	require.NoError(t, err)

	round2 := 2
	finals, err := f.matchRepo.ListByTournament(context.Background(), nil, tournament.ID, &round2, nil)
	require.NoError(t, err)
	require.Len(t, finals, 1)
	assert.Equal(t, models.PhaseFinal, finals[0].Phase)
	assert.Equal(t, 1, finals[0].Team1ID)
	assert.Equal(t, 4, *finals[0].Team2ID)

	assert.Equal(t, models.StatusPresencialPhase, f.tournamentRepo.tournaments[tournament.ID].Status)
	assert.Contains(t, f.notifications.phaseChanges, models.StatusPresencialPhase)
}

func TestStartMatchRequiresScheduledStatus(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4)
	match := f.findMatch(t, tournament.ID, 1, 1)

	started, err := f.matchService.StartMatch(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchInProgress, started.Status)

	_, err = f.matchService.StartMatch(context.Background(), match.ID)
	assert.ErrorIs(t, err, ErrMatchNotStartable)
}

// A start arriving after the result was recorded must not move the match
// back to in_progress and reopen it for a second result.
func TestStartMatchDoesNotRegressFinishedMatch(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4)
	match := f.findMatch(t, tournament.ID, 1, 1)

	_, err := f.matchService.RecordResult(context.Background(), match.ID, RecordResultInput{
		Team1Score: 2, Team2Score: 0, WinnerTeamID: 1,
	})
	require.NoError(t, err)

	_, err = f.matchService.StartMatch(context.Background(), match.ID)
	assert.ErrorIs(t, err, ErrMatchNotStartable)

	stored, err := f.matchRepo.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchFinished, stored.Status)
	assert.Equal(t, 1, *stored.WinnerTeamID)

	_, err = f.matchService.RecordResult(context.Background(), match.ID, RecordResultInput{
		Team1Score: 0, Team2Score: 2, WinnerTeamID: 2,
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)
}

// When the next round already exists, completing the previous round must
// not create a second copy of it.
func TestLastResultDoesNotDuplicateExistingNextRound(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4)

	_, err := f.matchService.RecordResult(context.Background(), f.findMatch(t, tournament.ID, 1, 1).ID,
		RecordResultInput{Team1Score: 2, Team2Score: 0, WinnerTeamID: 1})
	require.NoError(t, err)

	team4 := 4
	require.NoError(t, f.matchRepo.Create(context.Background(), nil, &models.Match{
		TournamentID: tournament.ID,
		Team1ID:      1,
		Team2ID:      &team4,
		Phase:        models.PhaseFinal,
		RoundNumber:  2,
		OrderInRound: 1,
		Status:       models.MatchScheduled,
	}))

	_, err = f.matchService.RecordResult(context.Background(), f.findMatch(t, tournament.ID, 1, 3).ID,
		RecordResultInput{Team1Score: 1, Team2Score: 2, WinnerTeamID: 4})
	require.NoError(t, err)

	round2 := 2
	finals, err := f.matchRepo.ListByTournament(context.Background(), nil, tournament.ID, &round2, nil)
	require.NoError(t, err)
	assert.Len(t, finals, 1)
}

// Five teams play to completion: a bye plus two real matches in round 1,
// three rounds total, and the tournament ends finished with every finished
// match carrying a winner.
func TestFiveTeamTournamentRunsToCompletion(t *testing.T) {
	f := newMatchFixture(t)
	tournament := f.startTournament(t, nil, 1, 2, 3, 4, 5)

	round1 := 1
	matches, err := f.matchRepo.ListByTournament(context.Background(), nil, tournament.ID, &round1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.True(t, matches[0].IsBye())

	// Round 1: team 2 and team 4 win their matches.
	_, err = f.matchService.RecordResult(context.Background(), f.findMatch(t, tournament.ID, 1, 2).ID,
		RecordResultInput{Team1Score: 2, Team2Score: 1, WinnerTeamID: 2})
	require.NoError(t, err)
	_, err = f.matchService.RecordResult(context.Background(), f.findMatch(t, tournament.ID, 1, 4).ID,
		RecordResultInput{Team1Score: 2, Team2Score: 0, WinnerTeamID: 4})
	require.NoError(t, err)

	// Round 2 pairs the three winners: bye for team 1, then 2 vs 4.
	round2 := 2
	semis, err := f.matchRepo.ListByTournament(context.Background(), nil, tournament.ID, &round2, nil)
	require.NoError(t, err)
	require.Len(t, semis, 2)
	assert.True(t, semis[0].IsBye())
	assert.Equal(t, 1, semis[0].Team1ID)
	assert.Equal(t, models.MatchFinished, semis[0].Status)
	assert.Equal(t, 2, semis[1].Team1ID)
	assert.Equal(t, 4, *semis[1].Team2ID)

	_, err = f.matchService.RecordResult(context.Background(), semis[1].ID,
		RecordResultInput{Team1Score: 3, Team2Score: 2, WinnerTeamID: 2})
	require.NoError(t, err)

	// Round 3 is the final between the bye survivor and the semifinal winner.
	round3 := 3
	finals, err := f.matchRepo.ListByTournament(context.Background(), nil, tournament.ID, &round3, nil)
	require.NoError(t, err)
	require.Len(t, finals, 1)
	assert.Equal(t, models.PhaseFinal, finals[0].Phase)
	assert.Equal(t, 1, finals[0].Team1ID)
	assert.Equal(t, 2, *finals[0].Team2ID)

	_, err = f.matchService.RecordResult(context.Background(), finals[0].ID,
		RecordResultInput{Team1Score: 2, Team2Score: 1, WinnerTeamID: 1})
	require.NoError(t, err)

	assert.Equal(t, models.StatusFinished, f.tournamentRepo.tournaments[tournament.ID].Status)
	assert.Contains(t, f.notifications.phaseChanges, models.StatusFinished)

	// Three rounds for five teams, six matches total, and the
	// finished-means-winner invariant holds everywhere.
	all, err := f.matchRepo.ListByTournament(context.Background(), nil, tournament.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	maxRound := 0
	for _, m := range all {
		if m.RoundNumber > maxRound {
			maxRound = m.RoundNumber
		}
		require.Equal(t, models.MatchFinished, m.Status)
		require.NotNil(t, m.WinnerTeamID)
	}
	assert.Equal(t, brackets.NumRounds(5), maxRound)
}
