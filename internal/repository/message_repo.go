package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/models"
)

// MessageRepository persists chat messages and tracks delivery status.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByThread(ctx context.Context, threadID string, before time.Time, limit int) ([]models.Message, error)
	MarkThreadRead(ctx context.Context, threadID, readerID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
	CountUnreadInThread(ctx context.Context, threadID, userID string) (int64, error)
	ListThreads(ctx context.Context, userID string) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListByThread(ctx context.Context, threadID string, before time.Time, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Where("thread_id = ?", threadID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	// Reverse to chronological order ascending for clients.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, threadID, readerID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("thread_id = ? AND recipient_id = ? AND status = ?", threadID, readerID, models.MessageStatusSent).
		Update("status", models.MessageStatusRead).Error
}

func (r *messageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ? AND status = ?", userID, models.MessageStatusSent).
		Count(&count).Error
	return count, err
}

func (r *messageRepository) CountUnreadInThread(ctx context.Context, threadID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("thread_id = ? AND recipient_id = ? AND status = ?", threadID, userID, models.MessageStatusSent).
		Count(&count).Error
	return count, err
}

// ListThreads returns the newest message of each thread the user takes part
// in, newest thread first.
func (r *messageRepository) ListThreads(ctx context.Context, userID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.
			Model(&models.Message{}).
			Select("MAX(id)").
			Where("sender_id = ? OR recipient_id = ?", userID, userID).
			Group("thread_id")).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
