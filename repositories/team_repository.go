package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrTeamInvalidGame    = errors.New("invalid game reference")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamMemberConflict = errors.New("player is already a member of this team")
	ErrTeamInvalidCaptain = errors.New("invalid captain reference")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	AddMember(ctx context.Context, member *models.TeamMember) error
	UpdateMemberStatus(ctx context.Context, memberID int, status models.TeamMemberStatus) error
	ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error)
	CountActiveMembers(ctx context.Context, teamID int) (int, error)
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
	Count(ctx context.Context) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

// Create inserts the team and its captain as the first active member in a
// single transaction.
func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO teams (name, game_id, captain_id, description, is_looking_for_players)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		t.Name, t.GameID, t.CaptainID, t.Description, t.IsLookingForPlayers,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return r.handleTeamError(err)
	}

	memberQuery := `
		INSERT INTO team_members (team_id, player_id, status)
		VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, memberQuery, t.ID, t.CaptainID, models.MemberActive); err != nil {
		return r.handleTeamError(err)
	}

	return tx.Commit()
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, game_id, captain_id, description, is_looking_for_players, logo_key, created_at
		FROM teams
		WHERE id = $1`

	t := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.GameID, &t.CaptainID, &t.Description, &t.IsLookingForPlayers, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, name, game_id, captain_id, description, is_looking_for_players, logo_key, created_at
		FROM teams
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t := &models.Team{}
		if err := rows.Scan(
			&t.ID, &t.Name, &t.GameID, &t.CaptainID, &t.Description, &t.IsLookingForPlayers, &t.LogoKey, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, m *models.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, player_id, position, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, joined_at`

	err := r.db.QueryRowContext(ctx, query, m.TeamID, m.PlayerID, m.Position, m.Status).Scan(&m.ID, &m.JoinedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrTeamMemberConflict
	}
	return err
}

func (r *postgresTeamRepository) UpdateMemberStatus(ctx context.Context, memberID int, status models.TeamMemberStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE team_members SET status = $1 WHERE id = $2`, status, memberID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error) {
	query := `
		SELECT m.id, m.team_id, m.player_id, m.position, m.status, m.joined_at,
		       p.id, p.email, p.full_name, p.gamertag, p.role, p.created_at
		FROM team_members m
		JOIN profiles p ON p.id = m.player_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		m := &models.TeamMember{Player: &models.Profile{}}
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.PlayerID, &m.Position, &m.Status, &m.JoinedAt,
			&m.Player.ID, &m.Player.Email, &m.Player.FullName, &m.Player.Gamertag, &m.Player.Role, &m.Player.CreatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresTeamRepository) CountActiveMembers(ctx context.Context, teamID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND status = $2`,
		teamID, models.MemberActive,
	).Scan(&count)
	return count, err
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update team logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count)
	return count, err
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTeamNameConflict
		case "23503":
			switch pqErr.Constraint {
			case "teams_game_id_fkey":
				return ErrTeamInvalidGame
			case "teams_captain_id_fkey":
				return ErrTeamInvalidCaptain
			}
		}
	}
	return err
}
