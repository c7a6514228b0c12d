package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/models"
)

// ReviewRepository handles persistence for session reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListForUser(ctx context.Context, revieweeID string, limit, offset int) ([]models.Review, error)
	FindBySessionAndReviewer(ctx context.Context, sessionID uint, reviewerID string) (models.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository constructs a review repository backed by GORM.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) ListForUser(ctx context.Context, revieweeID string, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("reviewee_id = ?", revieweeID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) FindBySessionAndReviewer(ctx context.Context, sessionID uint, reviewerID string) (models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND reviewer_id = ?", sessionID, reviewerID).
		First(&review).Error
	if err != nil {
		return models.Review{}, err
	}
	return review, nil
}
