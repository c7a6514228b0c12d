package realtime

import (
	"time"

	"github.com/skillswap/skillswap-api/internal/dto"
)

// Client-facing event names pushed over a live connection.
const (
	EventNewMessage      = "new-message"
	EventMessageSent     = "message-sent"
	EventMessageError    = "message-error"
	EventUserTyping      = "user-typing"
	EventNewNotification = "new-notification"
)

// Envelope is the wire frame written to a connection: the event name plus
// the payload for that event kind.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// MessagePayload accompanies a new-message event.
type MessagePayload struct {
	ID        uint      `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AckPayload accompanies the message-sent acknowledgment pushed back to the
// originating connection only.
type AckPayload struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

// ErrorPayload accompanies a message-error event. Retryable tells the client
// whether resubmitting the same message may succeed.
type ErrorPayload struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// TypingPayload accompanies a user-typing event.
type TypingPayload struct {
	Sender   string `json:"sender"`
	IsTyping bool   `json:"is_typing"`
}

// NotificationPayload accompanies a new-notification event.
type NotificationPayload struct {
	ID        uint           `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func newMessagePayload(message dto.ChatMessageResponse) MessagePayload {
	return MessagePayload{
		ID:        message.ID,
		ThreadID:  message.ThreadID,
		Sender:    message.SenderID,
		Content:   message.Content,
		Type:      message.Type,
		Status:    message.Status,
		CreatedAt: message.CreatedAt,
	}
}

func newNotificationPayload(notification dto.NotificationResponse) NotificationPayload {
	return NotificationPayload{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Data:      notification.Data,
		CreatedAt: notification.CreatedAt,
	}
}
