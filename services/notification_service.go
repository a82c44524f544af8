package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/JavierHEM/tarreo-oficial/repositories"
)

// NotificationService is informed, not consulted: phase changes and finished
// matches fan out to subscribers on a best-effort basis and never fail the
// operation that triggered them.
type NotificationService interface {
	Subscribe(ctx context.Context, tournamentID, profileID int) (*models.TournamentSubscription, error)
	ListForProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TournamentNotification, error)
	MarkRead(ctx context.Context, notificationID, profileID int) error

	// Fire-and-forget emitters. They run asynchronously and only log on
	// failure.
	NotifyPhaseChange(tournamentID int, status models.TournamentStatus)
	NotifyMatchFinished(match *models.Match)
}

type notificationService struct {
	repo   repositories.NotificationRepository
	logger *slog.Logger
}

func NewNotificationService(repo repositories.NotificationRepository, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Subscribe(ctx context.Context, tournamentID, profileID int) (*models.TournamentSubscription, error) {
	sub := &models.TournamentSubscription{TournamentID: tournamentID, ProfileID: profileID}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, repositories.ErrAlreadySubscribed) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to subscribe profile %d to tournament %d: %w", profileID, tournamentID, err)
	}
	return sub, nil
}

func (s *notificationService) ListForProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TournamentNotification, error) {
	return s.repo.ListByProfile(ctx, profileID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, profileID int) error {
	err := s.repo.MarkRead(ctx, notificationID, profileID)
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) NotifyPhaseChange(tournamentID int, status models.TournamentStatus) {
	go s.fanOut(tournamentID, models.NotificationPhaseChange,
		fmt.Sprintf("Tournament moved to %s", status))
}

func (s *notificationService) NotifyMatchFinished(match *models.Match) {
	message := fmt.Sprintf("Match of round %d finished", match.RoundNumber)
	if match.Team1Name != nil && match.Team2Name != nil {
		message = fmt.Sprintf("%s vs %s (round %d) finished", *match.Team1Name, *match.Team2Name, match.RoundNumber)
	}
	go s.fanOut(match.TournamentID, models.NotificationMatchFinished, message)
}

func (s *notificationService) fanOut(tournamentID int, kind models.NotificationType, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subscriberIDs, err := s.repo.ListSubscriberIDs(ctx, tournamentID)
	if err != nil {
		s.logger.Error("failed to list tournament subscribers",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	for _, profileID := range subscriberIDs {
		n := &models.TournamentNotification{
			ProfileID:    profileID,
			TournamentID: tournamentID,
			Type:         kind,
			Message:      message,
		}
		if err := s.repo.CreateNotification(ctx, n); err != nil {
			s.logger.Error("failed to create notification",
				slog.Int("tournament_id", tournamentID),
				slog.Int("profile_id", profileID),
				slog.Any("error", err))
		}
	}
}
