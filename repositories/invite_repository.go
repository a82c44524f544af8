package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/lib/pq"
)

var (
	ErrInviteNotFound      = errors.New("invitation not found")
	ErrInviteConflict      = errors.New("pending invitation already exists for this player")
	ErrInviteInvalidRef    = errors.New("invitation references a missing team or profile")
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrJoinRequestConflict = errors.New("pending join request already exists for this player")
)

type InviteRepository interface {
	CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error
	GetInvitationByID(ctx context.Context, id int) (*models.TeamInvitation, error)
	ListInvitationsForProfile(ctx context.Context, profileID int) ([]*models.TeamInvitation, error)
	ListInvitationsSent(ctx context.Context, inviterID int) ([]*models.TeamInvitation, error)
	// SettleInvitation moves a pending invitation to the given status with an
	// atomic check-and-set. Returns false without error when the invitation
	// was no longer pending.
	SettleInvitation(ctx context.Context, id int, status models.InviteStatus) (bool, error)
	DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error)

	CreateJoinRequest(ctx context.Context, req *models.TeamJoinRequest) error
	GetJoinRequestByID(ctx context.Context, id int) (*models.TeamJoinRequest, error)
	ListJoinRequestsByTeam(ctx context.Context, teamID int) ([]*models.TeamJoinRequest, error)
	// SettleJoinRequest is the check-and-set twin of SettleInvitation.
	SettleJoinRequest(ctx context.Context, id int, status models.InviteStatus) (bool, error)
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

func (r *postgresInviteRepository) CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error {
	query := `
		INSERT INTO team_invitations (team_id, inviter_id, invitee_id, message, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		inv.TeamID, inv.InviterID, inv.InviteeID, inv.Message, inv.Status, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	return r.handleInviteError(err)
}

func (r *postgresInviteRepository) GetInvitationByID(ctx context.Context, id int) (*models.TeamInvitation, error) {
	query := `
		SELECT i.id, i.team_id, i.inviter_id, i.invitee_id, i.message, i.status, i.expires_at, i.created_at,
		       t.name, p.gamertag
		FROM team_invitations i
		JOIN teams t ON t.id = i.team_id
		JOIN profiles p ON p.id = i.inviter_id
		WHERE i.id = $1`

	inv := &models.TeamInvitation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Message, &inv.Status,
		&inv.ExpiresAt, &inv.CreatedAt, &inv.TeamName, &inv.InviterGamertag,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to scan invitation %d: %w", id, err)
	}
	return inv, nil
}

func (r *postgresInviteRepository) ListInvitationsForProfile(ctx context.Context, profileID int) ([]*models.TeamInvitation, error) {
	return r.listInvitations(ctx, `i.invitee_id = $1`, profileID)
}

func (r *postgresInviteRepository) ListInvitationsSent(ctx context.Context, inviterID int) ([]*models.TeamInvitation, error) {
	return r.listInvitations(ctx, `i.inviter_id = $1`, inviterID)
}

func (r *postgresInviteRepository) listInvitations(ctx context.Context, where string, arg interface{}) ([]*models.TeamInvitation, error) {
	query := `
		SELECT i.id, i.team_id, i.inviter_id, i.invitee_id, i.message, i.status, i.expires_at, i.created_at,
		       t.name, p.gamertag
		FROM team_invitations i
		JOIN teams t ON t.id = i.team_id
		JOIN profiles p ON p.id = i.inviter_id
		WHERE ` + where + `
		ORDER BY i.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]*models.TeamInvitation, 0)
	for rows.Next() {
		inv := &models.TeamInvitation{}
		if err := rows.Scan(
			&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Message, &inv.Status,
			&inv.ExpiresAt, &inv.CreatedAt, &inv.TeamName, &inv.InviterGamertag,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *postgresInviteRepository) SettleInvitation(ctx context.Context, id int, status models.InviteStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE team_invitations SET status = $1 WHERE id = $2 AND status = $3`,
		status, id, models.InvitePending)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresInviteRepository) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_invitations WHERE status = $1 AND expires_at <= $2`,
		models.InvitePending, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresInviteRepository) CreateJoinRequest(ctx context.Context, req *models.TeamJoinRequest) error {
	query := `
		INSERT INTO team_join_requests (team_id, player_id, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		req.TeamID, req.PlayerID, req.Message, req.Status,
	).Scan(&req.ID, &req.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrJoinRequestConflict
		case "23503":
			return ErrInviteInvalidRef
		}
	}
	return err
}

func (r *postgresInviteRepository) GetJoinRequestByID(ctx context.Context, id int) (*models.TeamJoinRequest, error) {
	query := `
		SELECT jr.id, jr.team_id, jr.player_id, jr.message, jr.status, jr.created_at, p.gamertag
		FROM team_join_requests jr
		JOIN profiles p ON p.id = jr.player_id
		WHERE jr.id = $1`

	req := &models.TeamJoinRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.TeamID, &req.PlayerID, &req.Message, &req.Status, &req.CreatedAt, &req.PlayerGamertag,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan join request %d: %w", id, err)
	}
	return req, nil
}

func (r *postgresInviteRepository) ListJoinRequestsByTeam(ctx context.Context, teamID int) ([]*models.TeamJoinRequest, error) {
	query := `
		SELECT jr.id, jr.team_id, jr.player_id, jr.message, jr.status, jr.created_at, p.gamertag
		FROM team_join_requests jr
		JOIN profiles p ON p.id = jr.player_id
		WHERE jr.team_id = $1
		ORDER BY jr.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.TeamJoinRequest, 0)
	for rows.Next() {
		req := &models.TeamJoinRequest{}
		if err := rows.Scan(
			&req.ID, &req.TeamID, &req.PlayerID, &req.Message, &req.Status, &req.CreatedAt, &req.PlayerGamertag,
		); err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *postgresInviteRepository) SettleJoinRequest(ctx context.Context, id int, status models.InviteStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE team_join_requests SET status = $1 WHERE id = $2 AND status = $3`,
		status, id, models.InvitePending)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresInviteRepository) handleInviteError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrInviteConflict
		case "23503":
			return ErrInviteInvalidRef
		}
	}
	return err
}
