package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func seedMessage(t *testing.T, db *gorm.DB, thread, sender, recipient, content string, at time.Time) models.Message {
	t.Helper()
	message := models.Message{
		ThreadID:    thread,
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		Type:        "text",
		Status:      models.MessageStatusSent,
		CreatedAt:   at,
	}
	require.NoError(t, db.Create(&message).Error)
	return message
}

func TestMessageRepositoryListByThreadChronologicalWithPaging(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)

	now := time.Now()
	seedMessage(t, db, "1:2", "1", "2", "oldest", now.Add(-3*time.Hour))
	seedMessage(t, db, "1:2", "2", "1", "middle", now.Add(-2*time.Hour))
	seedMessage(t, db, "1:2", "1", "2", "newest", now.Add(-time.Hour))
	seedMessage(t, db, "1:3", "1", "3", "other thread", now)

	messages, err := repo.ListByThread(context.Background(), "1:2", time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "oldest", messages[0].Content)
	require.Equal(t, "newest", messages[2].Content)

	page, err := repo.ListByThread(context.Background(), "1:2", now.Add(-90*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "middle", page[1].Content)

	limited, err := repo.ListByThread(context.Background(), "1:2", time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "newest", limited[0].Content)
}

func TestMessageRepositoryMarkThreadReadOnlyAffectsRecipient(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)

	now := time.Now()
	inbound := seedMessage(t, db, "1:2", "2", "1", "for reader", now.Add(-time.Minute))
	outbound := seedMessage(t, db, "1:2", "1", "2", "from reader", now)

	require.NoError(t, repo.MarkThreadRead(context.Background(), "1:2", "1"))

	var stored models.Message
	require.NoError(t, db.First(&stored, inbound.ID).Error)
	require.Equal(t, models.MessageStatusRead, stored.Status)

	stored = models.Message{}
	require.NoError(t, db.First(&stored, outbound.ID).Error)
	require.Equal(t, models.MessageStatusSent, stored.Status)
}

func TestMessageRepositoryUnreadCounts(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)

	now := time.Now()
	seedMessage(t, db, "1:2", "2", "1", "a", now.Add(-2*time.Minute))
	seedMessage(t, db, "1:2", "2", "1", "b", now.Add(-time.Minute))
	seedMessage(t, db, "1:3", "3", "1", "c", now)

	total, err := repo.CountUnread(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	inThread, err := repo.CountUnreadInThread(context.Background(), "1:2", "1")
	require.NoError(t, err)
	require.Equal(t, int64(2), inThread)

	require.NoError(t, repo.MarkThreadRead(context.Background(), "1:2", "1"))

	total, err = repo.CountUnread(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestMessageRepositoryListThreadsReturnsLatestPerThread(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)

	now := time.Now()
	seedMessage(t, db, "1:2", "1", "2", "old", now.Add(-2*time.Hour))
	seedMessage(t, db, "1:2", "2", "1", "latest with bob", now.Add(-time.Hour))
	seedMessage(t, db, "1:3", "3", "1", "latest with carol", now)
	seedMessage(t, db, "4:5", "4", "5", "unrelated", now)

	threads, err := repo.ListThreads(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, threads, 2)
	require.Equal(t, "latest with carol", threads[0].Content)
	require.Equal(t, "latest with bob", threads[1].Content)
}

func TestNotificationRepositoryListByUserWithUnreadCount(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	for i := 0; i < 3; i++ {
		notification := models.Notification{UserID: "1", Type: models.NotificationTypeMessage, Title: "t", Message: "m"}
		require.NoError(t, db.Create(&notification).Error)
	}
	other := models.Notification{UserID: "2", Type: models.NotificationTypeMessage, Title: "t", Message: "m"}
	require.NoError(t, db.Create(&other).Error)

	items, unread, err := repo.ListByUser(context.Background(), "1", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, int64(3), unread)
}

func TestNotificationRepositoryMarkReadIsIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	notification := models.Notification{UserID: "1", Type: models.NotificationTypeMatchRequest, Title: "t", Message: "m"}
	require.NoError(t, db.Create(&notification).Error)

	first, err := repo.MarkRead(context.Background(), notification.ID, "1")
	require.NoError(t, err)
	require.True(t, first.Read)

	second, err := repo.MarkRead(context.Background(), notification.ID, "1")
	require.NoError(t, err)
	require.True(t, second.Read)

	_, unread, err := repo.ListByUser(context.Background(), "1", 10, 0)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestNotificationRepositoryMarkReadRejectsForeignOwner(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	notification := models.Notification{UserID: "1", Type: models.NotificationTypeMessage, Title: "t", Message: "m"}
	require.NoError(t, db.Create(&notification).Error)

	_, err := repo.MarkRead(context.Background(), notification.ID, "2")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestNotificationRepositoryMarkAllRead(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	for i := 0; i < 2; i++ {
		notification := models.Notification{UserID: "1", Type: models.NotificationTypeMessage, Title: "t", Message: "m"}
		require.NoError(t, db.Create(&notification).Error)
	}

	require.NoError(t, repo.MarkAllRead(context.Background(), "1"))

	_, unread, err := repo.ListByUser(context.Background(), "1", 10, 0)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestNotificationRepositoryDelete(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	notification := models.Notification{UserID: "1", Type: models.NotificationTypeMessage, Title: "t", Message: "m"}
	require.NoError(t, db.Create(&notification).Error)

	require.NoError(t, repo.Delete(context.Background(), notification.ID, "1"))
	require.ErrorIs(t, repo.Delete(context.Background(), notification.ID, "1"), gorm.ErrRecordNotFound)
}
