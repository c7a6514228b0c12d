package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/repository"
)

var (
	// ErrReviewNotAllowed indicates the session is not completed or the caller
	// did not take part in it.
	ErrReviewNotAllowed = errors.New("session cannot be reviewed")
	// ErrReviewDuplicate indicates the caller already reviewed this session.
	ErrReviewDuplicate = errors.New("session already reviewed")
)

// ReviewService handles feedback for completed sessions.
type ReviewService interface {
	Submit(ctx context.Context, reviewerID string, payload dto.ReviewCreateRequest) (dto.ReviewResponse, error)
	ListForUser(ctx context.Context, revieweeID string, limit, offset int) ([]dto.ReviewResponse, error)
}

type reviewService struct {
	reviews   repository.ReviewRepository
	sessions  repository.SessionRepository
	notifier  NotificationPublisher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewReviewService creates a review service instance.
func NewReviewService(reviews repository.ReviewRepository, sessions repository.SessionRepository, notifier NotificationPublisher, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	return &reviewService{
		reviews:   reviews,
		sessions:  sessions,
		notifier:  notifier,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "review_service").Logger(),
	}
}

// Submit stores a review for a completed session the caller took part in and
// notifies the counterpart.
func (s *reviewService) Submit(ctx context.Context, reviewerID string, payload dto.ReviewCreateRequest) (dto.ReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReviewResponse{}, err
	}

	session, err := s.sessions.FindByID(ctx, payload.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrSessionNotFound
		}
		return dto.ReviewResponse{}, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Status != models.SessionStatusCompleted {
		return dto.ReviewResponse{}, ErrReviewNotAllowed
	}

	var revieweeID string
	switch reviewerID {
	case session.HostID:
		revieweeID = session.GuestID
	case session.GuestID:
		revieweeID = session.HostID
	default:
		return dto.ReviewResponse{}, ErrReviewNotAllowed
	}

	if _, err := s.reviews.FindBySessionAndReviewer(ctx, session.ID, reviewerID); err == nil {
		return dto.ReviewResponse{}, ErrReviewDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ReviewResponse{}, fmt.Errorf("failed to check existing review: %w", err)
	}

	review := models.Review{
		SessionID:  session.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     payload.Rating,
		Comment:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Comment)),
	}

	if err := s.reviews.Create(ctx, &review); err != nil {
		return dto.ReviewResponse{}, fmt.Errorf("failed to store review: %w", err)
	}

	if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  revieweeID,
		Type:    models.NotificationTypeReviewReceived,
		Title:   "New review",
		Message: fmt.Sprintf("You received a %d-star review for %s", review.Rating, session.Topic),
		Data: map[string]any{
			"review_id": review.ID,
			"rating":    review.Rating,
		},
	}); err != nil {
		s.logger.Warn().Err(err).Uint("review_id", review.ID).Msg("failed to notify review")
	}

	return dto.NewReviewResponse(review), nil
}

func (s *reviewService) ListForUser(ctx context.Context, revieweeID string, limit, offset int) ([]dto.ReviewResponse, error) {
	reviews, err := s.reviews.ListForUser(ctx, revieweeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return dto.NewReviewResponseSlice(reviews), nil
}
