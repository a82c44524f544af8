package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchInvalidTeam   = errors.New("match team reference is invalid")
	ErrMatchInvalidWinner = errors.New("match winner reference is invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	Count(ctx context.Context, status *models.MatchStatus) (int, error)
	// FinishIfUnfinished applies a result with an atomic check-and-set on
	// status <> finished. Returns false without error when the match was
	// already finished, so concurrent submissions cannot double-record.
	FinishIfUnfinished(ctx context.Context, exec SQLExecutor, id int, team1Score, team2Score int, winnerTeamID int, finishedAt time.Time) (bool, error)
	// StartIfScheduled moves a match to in_progress only from scheduled,
	// using the same check-and-set shape as FinishIfUnfinished. Returns
	// false without error when the match was not in scheduled status, so a
	// start can never overwrite a recorded result.
	StartIfScheduled(ctx context.Context, id int) (bool, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (tournament_id, team1_id, team2_id, phase, round_number, order_in_round,
			status, team1_score, team2_score, winner_team_id, match_date, finished_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.Team1ID, m.Team2ID, m.Phase, m.RoundNumber, m.OrderInRound,
		m.Status, m.Team1Score, m.Team2Score, m.WinnerTeamID, m.MatchDate, m.FinishedAt, m.Notes,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT m.id, m.tournament_id, m.team1_id, m.team2_id, m.phase, m.round_number, m.order_in_round,
		       m.status, m.team1_score, m.team2_score, m.winner_team_id, m.match_date, m.finished_at, m.notes, m.created_at,
		       t1.name, t2.name
		FROM matches m
		JOIN teams t1 ON t1.id = m.team1_id
		LEFT JOIN teams t2 ON t2.id = m.team2_id
		WHERE m.id = $1`

	m := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.Phase, &m.RoundNumber, &m.OrderInRound,
		&m.Status, &m.Team1Score, &m.Team2Score, &m.WinnerTeamID, &m.MatchDate, &m.FinishedAt, &m.Notes, &m.CreatedAt,
		&m.Team1Name, &m.Team2Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT m.id, m.tournament_id, m.team1_id, m.team2_id, m.phase, m.round_number, m.order_in_round,
		       m.status, m.team1_score, m.team2_score, m.winner_team_id, m.match_date, m.finished_at, m.notes, m.created_at,
		       t1.name, t2.name
		FROM matches m
		JOIN teams t1 ON t1.id = m.team1_id
		LEFT JOIN teams t2 ON t2.id = m.team2_id
		WHERE m.tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2

	if round != nil {
		queryBuilder.WriteString(" AND m.round_number = $" + strconv.Itoa(placeholder))
		args = append(args, *round)
		placeholder++
	}
	if status != nil {
		queryBuilder.WriteString(" AND m.status = $" + strconv.Itoa(placeholder))
		args = append(args, *status)
	}

	queryBuilder.WriteString(" ORDER BY m.round_number ASC, m.order_in_round ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		if err := rows.Scan(
			&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.Phase, &m.RoundNumber, &m.OrderInRound,
			&m.Status, &m.Team1Score, &m.Team2Score, &m.WinnerTeamID, &m.MatchDate, &m.FinishedAt, &m.Notes, &m.CreatedAt,
			&m.Team1Name, &m.Team2Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresMatchRepository) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	query := `SELECT COUNT(*) FROM matches`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *postgresMatchRepository) FinishIfUnfinished(ctx context.Context, exec SQLExecutor, id int, team1Score, team2Score int, winnerTeamID int, finishedAt time.Time) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET status = $1, team1_score = $2, team2_score = $3, winner_team_id = $4, finished_at = $5
		WHERE id = $6 AND status <> $1`

	result, err := executor.ExecContext(ctx, query,
		models.MatchFinished, team1Score, team2Score, winnerTeamID, finishedAt, id,
	)
	if err != nil {
		return false, r.handleMatchError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresMatchRepository) StartIfScheduled(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`,
		models.MatchInProgress, id, models.MatchScheduled)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_team1_id_fkey", "matches_team2_id_fkey":
			return ErrMatchInvalidTeam
		case "matches_winner_team_id_fkey":
			return ErrMatchInvalidWinner
		}
	}
	return err
}
