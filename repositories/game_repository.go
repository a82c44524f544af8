package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrGameNameConflict    = errors.New("game name is already in use")
	ErrGameInvalidPlatform = errors.New("invalid platform reference")
	ErrPlatformNotFound    = errors.New("platform not found")
)

type GameRepository interface {
	CreateGame(ctx context.Context, game *models.Game) error
	GetGameByID(ctx context.Context, id int) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	CreatePlatform(ctx context.Context, platform *models.Platform) error
	ListPlatforms(ctx context.Context) ([]*models.Platform, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) CreateGame(ctx context.Context, g *models.Game) error {
	query := `
		INSERT INTO games (name, platform_id, max_team_size)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, g.Name, g.PlatformID, g.MaxTeamSize).Scan(&g.ID, &g.CreatedAt)
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrGameNameConflict
		case "23503":
			return ErrGameInvalidPlatform
		}
	}
	return err
}

func (r *postgresGameRepository) GetGameByID(ctx context.Context, id int) (*models.Game, error) {
	query := `
		SELECT g.id, g.name, g.platform_id, g.max_team_size, g.created_at,
		       p.id, p.name, p.created_at
		FROM games g
		JOIN platforms p ON p.id = g.platform_id
		WHERE g.id = $1`

	g := &models.Game{Platform: &models.Platform{}}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.PlatformID, &g.MaxTeamSize, &g.CreatedAt,
		&g.Platform.ID, &g.Platform.Name, &g.Platform.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGameRepository) ListGames(ctx context.Context) ([]*models.Game, error) {
	query := `
		SELECT g.id, g.name, g.platform_id, g.max_team_size, g.created_at,
		       p.id, p.name, p.created_at
		FROM games g
		JOIN platforms p ON p.id = g.platform_id
		ORDER BY g.name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		g := &models.Game{Platform: &models.Platform{}}
		if err := rows.Scan(
			&g.ID, &g.Name, &g.PlatformID, &g.MaxTeamSize, &g.CreatedAt,
			&g.Platform.ID, &g.Platform.Name, &g.Platform.CreatedAt,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) CreatePlatform(ctx context.Context, p *models.Platform) error {
	query := `INSERT INTO platforms (name) VALUES ($1) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, p.Name).Scan(&p.ID, &p.CreatedAt)
}

func (r *postgresGameRepository) ListPlatforms(ctx context.Context) ([]*models.Platform, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM platforms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	platforms := make([]*models.Platform, 0)
	for rows.Next() {
		p := &models.Platform{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}
