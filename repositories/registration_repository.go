package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrRegistrationConflict surfaces the unique (tournament_id, team_id)
	// constraint: a team cannot register twice to the same tournament.
	ErrRegistrationConflict = errors.New("team is already registered for this tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, registration *models.Registration) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	Exists(ctx context.Context, tournamentID, teamID int) (bool, error)
	// ListByTournament returns registrations in creation order with team
	// names attached. Creation order is the bracket seeding order.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_registrations (tournament_id, team_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, reg.TournamentID, reg.TeamID).Scan(&reg.ID, &reg.CreatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrRegistrationConflict
	}
	return err
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_registrations WHERE tournament_id = $1`,
		tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresRegistrationRepository) Exists(ctx context.Context, tournamentID, teamID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tournament_registrations WHERE tournament_id = $1 AND team_id = $2)`,
		tournamentID, teamID,
	).Scan(&exists)
	return exists, err
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT r.id, r.tournament_id, r.team_id, r.created_at,
		       t.id, t.name, t.game_id, t.captain_id, t.created_at
		FROM tournament_registrations r
		JOIN teams t ON t.id = r.team_id
		WHERE r.tournament_id = $1
		ORDER BY r.created_at ASC, r.id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{Team: &models.Team{}}
		if err := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.CreatedAt,
			&reg.Team.ID, &reg.Team.Name, &reg.Team.GameID, &reg.Team.CaptainID, &reg.Team.CreatedAt,
		); err != nil {
			return nil, err
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}
