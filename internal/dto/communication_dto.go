package dto

import (
	"time"

	"github.com/skillswap/skillswap-api/internal/models"
)

// ChatInboundFrame is the tagged envelope clients write to the websocket.
// Exactly one variant matching Kind must be populated.
type ChatInboundFrame struct {
	Kind    string           `json:"kind" validate:"required,oneof=message typing"`
	Message *ChatSendRequest `json:"message"`
	Typing  *TypingRequest   `json:"typing"`
}

// ChatSendRequest asks the dispatcher to deliver a chat message.
type ChatSendRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,max=64"`
	Content     string `json:"content" validate:"required,min=1,max=4000"`
	Type        string `json:"type" validate:"omitempty,oneof=text image"`
}

// TypingRequest signals a typing indicator toward the conversation counterpart.
type TypingRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,max=64"`
	IsTyping    bool   `json:"is_typing"`
}

// ChatHistoryQuery selects a page of one conversation thread.
type ChatHistoryQuery struct {
	With   string     `query:"with" validate:"required,max=64"`
	Before *time.Time `query:"before"`
	Limit  int        `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ChatMessageResponse is the serialized representation of a chat message.
type ChatMessageResponse struct {
	ID          uint      `json:"id"`
	ThreadID    string    `json:"thread_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewChatMessageResponse converts a model into a DTO.
func NewChatMessageResponse(message models.Message) ChatMessageResponse {
	return ChatMessageResponse{
		ID:          message.ID,
		ThreadID:    message.ThreadID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Content:     message.Content,
		Type:        message.Type,
		Status:      message.Status,
		CreatedAt:   message.CreatedAt,
	}
}

// NewChatMessageResponseSlice converts a slice of models into DTOs.
func NewChatMessageResponseSlice(messages []models.Message) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewChatMessageResponse(message))
	}
	return out
}

// ThreadSummaryResponse describes one conversation in the thread listing.
type ThreadSummaryResponse struct {
	ThreadID      string              `json:"thread_id"`
	CounterpartID string              `json:"counterpart_id"`
	LastMessage   ChatMessageResponse `json:"last_message"`
	UnreadCount   int64               `json:"unread_count"`
}

// NotificationCreateRequest describes the payload producers hand to the dispatcher.
type NotificationCreateRequest struct {
	UserID  string         `json:"user_id" validate:"required,max=64"`
	Type    string         `json:"type" validate:"required,oneof=message match_request match_accepted session_scheduled session_reminder review_received"`
	Title   string         `json:"title" validate:"required,max=255"`
	Message string         `json:"message" validate:"required,min=1,max=2000"`
	Data    map[string]any `json:"data"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint           `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		Data:      model.Data,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// NotificationListResponse pairs a notification page with the owner's unread total.
type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int64                  `json:"unread_count"`
}
