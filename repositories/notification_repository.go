package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/lib/pq"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAlreadySubscribed    = errors.New("profile is already subscribed to this tournament")
)

type NotificationRepository interface {
	CreateSubscription(ctx context.Context, sub *models.TournamentSubscription) error
	ListSubscriberIDs(ctx context.Context, tournamentID int) ([]int, error)
	CreateNotification(ctx context.Context, n *models.TournamentNotification) error
	ListByProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TournamentNotification, error)
	MarkRead(ctx context.Context, notificationID, profileID int) error
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateSubscription(ctx context.Context, s *models.TournamentSubscription) error {
	query := `
		INSERT INTO tournament_subscriptions (tournament_id, profile_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, s.TournamentID, s.ProfileID).Scan(&s.ID, &s.CreatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrAlreadySubscribed
	}
	return err
}

func (r *postgresNotificationRepository) ListSubscriberIDs(ctx context.Context, tournamentID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT profile_id FROM tournament_subscriptions WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, n *models.TournamentNotification) error {
	query := `
		INSERT INTO tournament_notifications (profile_id, tournament_id, type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query, n.ProfileID, n.TournamentID, n.Type, n.Message).Scan(&n.ID, &n.CreatedAt)
}

func (r *postgresNotificationRepository) ListByProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TournamentNotification, error) {
	query := `
		SELECT id, profile_id, tournament_id, type, message, read, created_at
		FROM tournament_notifications
		WHERE profile_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*models.TournamentNotification, 0)
	for rows.Next() {
		n := &models.TournamentNotification{}
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.TournamentID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, notificationID, profileID int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_notifications SET read = TRUE WHERE id = $1 AND profile_id = $2`,
		notificationID, profileID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}
