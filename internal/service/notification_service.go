package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/realtime"
	"github.com/skillswap/skillswap-api/internal/repository"
)

// ErrNotificationNotFound indicates the notification does not exist or is
// owned by a different user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationPublisher is the producer-facing slice of the notification
// service. Match, session and review services emit through it.
type NotificationPublisher interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// NotificationService manages durable notifications and their realtime fan-out.
type NotificationService interface {
	NotificationPublisher
	List(ctx context.Context, userID string, limit, offset int) (dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, userID string, id uint) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, id uint) error
}

type notificationService struct {
	dispatcher *realtime.Dispatcher
	repo       repository.NotificationRepository
	logger     zerolog.Logger
}

// NewNotificationService creates a notification service instance.
func NewNotificationService(dispatcher *realtime.Dispatcher, repo repository.NotificationRepository, logger zerolog.Logger) NotificationService {
	return &notificationService{
		dispatcher: dispatcher,
		repo:       repo,
		logger:     logger.With().Str("component", "notification_service").Logger(),
	}
}

// Publish persists the notification and pushes new-notification to each of
// the owner's live connections. Validation and fan-out live in the dispatcher.
func (s *notificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	response, err := s.dispatcher.Notify(ctx, payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", payload.UserID).Str("type", payload.Type).Msg("failed to publish notification")
		return dto.NotificationResponse{}, err
	}
	return response, nil
}

func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) (dto.NotificationListResponse, error) {
	items, unread, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return dto.NotificationListResponse{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	return dto.NotificationListResponse{
		Items:       dto.NewNotificationResponseSlice(items),
		UnreadCount: unread,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, id uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID string, id uint) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}
