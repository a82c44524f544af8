package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
	"github.com/stretchr/testify/require"
)

// The services only use *sql.DB for transaction demarcation; every query
// goes through a repository. The stub driver below hands out no-op
// transactions so the fakes can run without a database.

type stubTxDriver struct{}

func (stubTxDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubDriver.Do(func() { sql.Register("txstub", stubTxDriver{}) })
	db, err := sql.Open("txstub", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTournamentRepo struct {
	nextID      int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{nextID: 1, tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	if t.ID == 0 {
		t.ID = r.nextID
		r.nextID++
	}
	r.tournaments[t.ID] = t
	return t
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.add(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.GameID != nil && t.GameID != *filter.GameID {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) CloseExpiredRegistrations(ctx context.Context, now time.Time) ([]int, error) {
	var closed []int
	for id, t := range r.tournaments {
		if t.Status == models.StatusRegistrationOpen && t.RegistrationEnd != nil && now.After(*t.RegistrationEnd) {
			t.Status = models.StatusRegistrationClosed
			closed = append(closed, id)
		}
	}
	return closed, nil
}

func (r *fakeTournamentRepo) Count(ctx context.Context, status *models.TournamentStatus) (int, error) {
	if status == nil {
		return len(r.tournaments), nil
	}
	count := 0
	for _, t := range r.tournaments {
		if t.Status == *status {
			count++
		}
	}
	return count, nil
}

type fakeRegistrationRepo struct {
	nextID        int
	registrations []*models.Registration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{nextID: 1}
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	for _, existing := range r.registrations {
		if existing.TournamentID == reg.TournamentID && existing.TeamID == reg.TeamID {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = r.nextID
	r.nextID++
	reg.CreatedAt = time.Now()
	copied := *reg
	r.registrations = append(r.registrations, &copied)
	return nil
}

func (r *fakeRegistrationRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRegistrationRepo) Exists(ctx context.Context, tournamentID, teamID int) (bool, error) {
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID && reg.TeamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Registration, error) {
	out := make([]*models.Registration, 0)
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID {
			copied := *reg
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeMatchRepo struct {
	nextID  int
	matches []*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1}
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = time.Now()
	copied := *m
	r.matches = append(r.matches, &copied)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.RoundNumber != *round {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	count := 0
	for _, m := range r.matches {
		if status == nil || m.Status == *status {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) FinishIfUnfinished(ctx context.Context, exec repositories.SQLExecutor, id int, team1Score, team2Score, winnerTeamID int, finishedAt time.Time) (bool, error) {
	for _, m := range r.matches {
		if m.ID != id {
			continue
		}
		if m.Status == models.MatchFinished {
			return false, nil
		}
		m.Status = models.MatchFinished
		m.Team1Score = &team1Score
		m.Team2Score = &team2Score
		m.WinnerTeamID = &winnerTeamID
		m.FinishedAt = &finishedAt
		return true, nil
	}
	return false, nil
}

func (r *fakeMatchRepo) StartIfScheduled(ctx context.Context, id int) (bool, error) {
	for _, m := range r.matches {
		if m.ID != id {
			continue
		}
		if m.Status != models.MatchScheduled {
			return false, nil
		}
		m.Status = models.MatchInProgress
		return true, nil
	}
	return false, nil
}

type fakeTeamRepo struct {
	teams         map[int]*models.Team
	activeMembers map[int]int
	members       []*models.TeamMember
	nextMemberID  int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), activeMembers: make(map[int]int), nextMemberID: 1}
}

func (r *fakeTeamRepo) addTeam(id, gameID, active int) {
	r.teams[id] = &models.Team{ID: id, Name: "team", GameID: gameID, CaptainID: 1}
	r.activeMembers[id] = active
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) List(ctx context.Context) ([]*models.Team, error) { return nil, nil }

func (r *fakeTeamRepo) AddMember(ctx context.Context, member *models.TeamMember) error {
	for _, m := range r.members {
		if m.TeamID == member.TeamID && m.PlayerID == member.PlayerID {
			return repositories.ErrTeamMemberConflict
		}
	}
	member.ID = r.nextMemberID
	r.nextMemberID++
	copied := *member
	r.members = append(r.members, &copied)
	if member.Status == models.MemberActive {
		r.activeMembers[member.TeamID]++
	}
	return nil
}

func (r *fakeTeamRepo) UpdateMemberStatus(ctx context.Context, memberID int, status models.TeamMemberStatus) error {
	return nil
}

func (r *fakeTeamRepo) ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error) {
	return nil, nil
}

func (r *fakeTeamRepo) CountActiveMembers(ctx context.Context, teamID int) (int, error) {
	return r.activeMembers[teamID], nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	return nil
}

func (r *fakeTeamRepo) Count(ctx context.Context) (int, error) { return len(r.teams), nil }

type fakeGameRepo struct {
	games map[int]*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[int]*models.Game)}
}

func (r *fakeGameRepo) addGame(id, maxTeamSize int) {
	r.games[id] = &models.Game{ID: id, Name: "game", PlatformID: 1, MaxTeamSize: maxTeamSize}
}

func (r *fakeGameRepo) CreateGame(ctx context.Context, g *models.Game) error {
	r.games[g.ID] = g
	return nil
}

func (r *fakeGameRepo) GetGameByID(ctx context.Context, id int) (*models.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGameRepo) ListGames(ctx context.Context) ([]*models.Game, error) { return nil, nil }

func (r *fakeGameRepo) CreatePlatform(ctx context.Context, p *models.Platform) error { return nil }

func (r *fakeGameRepo) ListPlatforms(ctx context.Context) ([]*models.Platform, error) {
	return nil, nil
}

type fakeInviteRepo struct {
	nextID       int
	invitations  []*models.TeamInvitation
	joinRequests []*models.TeamJoinRequest
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{nextID: 1}
}

func (r *fakeInviteRepo) CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error {
	for _, existing := range r.invitations {
		if existing.TeamID == inv.TeamID && existing.InviteeID == inv.InviteeID && existing.Status == models.InvitePending {
			return repositories.ErrInviteConflict
		}
	}
	inv.ID = r.nextID
	r.nextID++
	inv.CreatedAt = time.Now()
	copied := *inv
	r.invitations = append(r.invitations, &copied)
	return nil
}

func (r *fakeInviteRepo) GetInvitationByID(ctx context.Context, id int) (*models.TeamInvitation, error) {
	for _, inv := range r.invitations {
		if inv.ID == id {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, repositories.ErrInviteNotFound
}

func (r *fakeInviteRepo) ListInvitationsForProfile(ctx context.Context, profileID int) ([]*models.TeamInvitation, error) {
	out := make([]*models.TeamInvitation, 0)
	for _, inv := range r.invitations {
		if inv.InviteeID == profileID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInviteRepo) ListInvitationsSent(ctx context.Context, inviterID int) ([]*models.TeamInvitation, error) {
	out := make([]*models.TeamInvitation, 0)
	for _, inv := range r.invitations {
		if inv.InviterID == inviterID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInviteRepo) SettleInvitation(ctx context.Context, id int, status models.InviteStatus) (bool, error) {
	for _, inv := range r.invitations {
		if inv.ID != id {
			continue
		}
		if inv.Status != models.InvitePending {
			return false, nil
		}
		inv.Status = status
		return true, nil
	}
	return false, nil
}

func (r *fakeInviteRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	kept := r.invitations[:0]
	var purged int64
	for _, inv := range r.invitations {
		if inv.Status == models.InvitePending && now.After(inv.ExpiresAt) {
			purged++
			continue
		}
		kept = append(kept, inv)
	}
	r.invitations = kept
	return purged, nil
}

func (r *fakeInviteRepo) CreateJoinRequest(ctx context.Context, req *models.TeamJoinRequest) error {
	for _, existing := range r.joinRequests {
		if existing.TeamID == req.TeamID && existing.PlayerID == req.PlayerID && existing.Status == models.InvitePending {
			return repositories.ErrJoinRequestConflict
		}
	}
	req.ID = r.nextID
	r.nextID++
	req.CreatedAt = time.Now()
	copied := *req
	r.joinRequests = append(r.joinRequests, &copied)
	return nil
}

func (r *fakeInviteRepo) GetJoinRequestByID(ctx context.Context, id int) (*models.TeamJoinRequest, error) {
	for _, req := range r.joinRequests {
		if req.ID == id {
			copied := *req
			return &copied, nil
		}
	}
	return nil, repositories.ErrJoinRequestNotFound
}

func (r *fakeInviteRepo) ListJoinRequestsByTeam(ctx context.Context, teamID int) ([]*models.TeamJoinRequest, error) {
	out := make([]*models.TeamJoinRequest, 0)
	for _, req := range r.joinRequests {
		if req.TeamID == teamID {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInviteRepo) SettleJoinRequest(ctx context.Context, id int, status models.InviteStatus) (bool, error) {
	for _, req := range r.joinRequests {
		if req.ID != id {
			continue
		}
		if req.Status != models.InvitePending {
			return false, nil
		}
		req.Status = status
		return true, nil
	}
	return false, nil
}

// fakeNotifications records emitted events synchronously so tests can
// assert on them without racing the real fan-out goroutine.
type fakeNotifications struct {
	phaseChanges    []models.TournamentStatus
	matchesFinished []int
}

func (f *fakeNotifications) Subscribe(ctx context.Context, tournamentID, profileID int) (*models.TournamentSubscription, error) {
	return &models.TournamentSubscription{TournamentID: tournamentID, ProfileID: profileID}, nil
}

func (f *fakeNotifications) ListForProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TournamentNotification, error) {
	return nil, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, notificationID, profileID int) error {
	return nil
}

func (f *fakeNotifications) NotifyPhaseChange(tournamentID int, status models.TournamentStatus) {
	f.phaseChanges = append(f.phaseChanges, status)
}

func (f *fakeNotifications) NotifyMatchFinished(match *models.Match) {
	f.matchesFinished = append(f.matchesFinished, match.ID)
}
