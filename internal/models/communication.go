package models

import (
	"time"

	"gorm.io/datatypes"
)

// Message delivery statuses.
const (
	MessageStatusSent = "sent"
	MessageStatusRead = "read"
)

// Message is a single chat message between two users. The thread id is the
// sorted pair of the participant ids, so both directions of a conversation
// share one thread.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ThreadID    string    `gorm:"size:129;index;not null" json:"thread_id"`
	SenderID    string    `gorm:"size:64;index" json:"sender_id"`
	RecipientID string    `gorm:"size:64;index" json:"recipient_id"`
	Content     string    `gorm:"type:text" json:"content"`
	Type        string    `gorm:"size:32;default:text" json:"type"`
	Status      string    `gorm:"size:16;default:sent" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Notification types producers are allowed to emit.
const (
	NotificationTypeMessage          = "message"
	NotificationTypeMatchRequest     = "match_request"
	NotificationTypeMatchAccepted    = "match_accepted"
	NotificationTypeSessionScheduled = "session_scheduled"
	NotificationTypeSessionReminder  = "session_reminder"
	NotificationTypeReviewReceived   = "review_received"
)

// Notification is a durable push notification owned by a single user. Data
// carries type-specific fields (match id, session id, room url, ...).
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    string            `gorm:"size:64;index" json:"user_id"`
	Type      string            `gorm:"size:64;not null" json:"type"`
	Title     string            `gorm:"size:255" json:"title"`
	Message   string            `gorm:"type:text" json:"message"`
	Data      datatypes.JSONMap `gorm:"type:json" json:"data"`
	Read      bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// UploadRecord stores metadata about an uploaded asset (avatars, shared files).
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:128;index" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
