package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/models"
)

// SessionRepository handles persistence for scheduled video sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uint) (models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Session, error)
	DueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]models.Session, error)
	MarkReminded(ctx context.Context, id uint) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a session repository backed by GORM.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("host_id = ? OR guest_id = ?", userID, userID).
		Order("scheduled_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// DueForReminder returns scheduled sessions starting within the window that
// have not been reminded yet.
func (r *sessionRepository) DueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_sent = ? AND scheduled_at > ? AND scheduled_at <= ?",
			models.SessionStatusScheduled, false, now, now.Add(window)).
		Order("scheduled_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) MarkReminded(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}
