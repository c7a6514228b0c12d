package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/models"
)

// MatchRepository handles persistence for skill-exchange matches.
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	FindByID(ctx context.Context, id uint) (models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	ListForUser(ctx context.Context, userID string, status string, limit, offset int) ([]models.Match, error)
	FindPendingBetween(ctx context.Context, requesterID, addresseeID string) (models.Match, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository constructs a match repository backed by GORM.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *matchRepository) FindByID(ctx context.Context, id uint) (models.Match, error) {
	var match models.Match
	if err := r.db.WithContext(ctx).First(&match, id).Error; err != nil {
		return models.Match{}, err
	}
	return match, nil
}

func (r *matchRepository) Update(ctx context.Context, match *models.Match) error {
	return r.db.WithContext(ctx).Save(match).Error
}

func (r *matchRepository) ListForUser(ctx context.Context, userID string, status string, limit, offset int) ([]models.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Where("requester_id = ? OR addressee_id = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var matches []models.Match
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) FindPendingBetween(ctx context.Context, requesterID, addresseeID string) (models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND addressee_id = ? AND status = ?", requesterID, addresseeID, models.MatchStatusPending).
		First(&match).Error
	if err != nil {
		return models.Match{}, err
	}
	return match, nil
}
