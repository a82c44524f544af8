package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/lib/pq"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileEmailConflict = errors.New("email address is already in use")
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id int) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	ListLookingForTeam(ctx context.Context) ([]*models.Profile, error)
	Count(ctx context.Context) (int, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

const profileColumns = `id, email, password_hash, full_name, gamertag, carrera, role, preferred_games, is_looking_for_team, created_at`

func scanProfile(row interface{ Scan(...interface{}) error }, p *models.Profile) error {
	return row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Gamertag,
		&p.Carrera, &p.Role, &p.PreferredGames, &p.IsLookingForTeam, &p.CreatedAt,
	)
}

func (r *postgresProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (email, password_hash, full_name, gamertag, carrera, role, preferred_games, is_looking_for_team)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Email, p.PasswordHash, p.FullName, p.Gamertag, p.Carrera, p.Role, p.PreferredGames, p.IsLookingForTeam,
	).Scan(&p.ID, &p.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrProfileEmailConflict
	}
	return err
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p := &models.Profile{}
	err := scanProfile(r.db.QueryRowContext(ctx, query, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`

	p := &models.Profile{}
	err := scanProfile(r.db.QueryRowContext(ctx, query, email), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresProfileRepository) ListLookingForTeam(ctx context.Context) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE is_looking_for_team = TRUE ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		p := &models.Profile{}
		if err := scanProfile(rows, p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *postgresProfileRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	return count, err
}
