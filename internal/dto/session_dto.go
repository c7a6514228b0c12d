package dto

import (
	"time"

	"github.com/skillswap/skillswap-api/internal/models"
)

// SessionCreateRequest schedules a video session with another user.
type SessionCreateRequest struct {
	GuestID     string    `json:"guest_id" validate:"required,max=64"`
	Topic       string    `json:"topic" validate:"required,min=2,max=255"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	DurationMin int       `json:"duration_min" validate:"omitempty,min=15,max=240"`
}

// SessionResponse is the serialized representation of a session.
type SessionResponse struct {
	ID          uint      `json:"id"`
	HostID      string    `json:"host_id"`
	GuestID     string    `json:"guest_id"`
	Topic       string    `json:"topic"`
	ScheduledAt time.Time `json:"scheduled_at"`
	DurationMin int       `json:"duration_min"`
	RoomURL     string    `json:"room_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSessionResponse converts a session model into a DTO.
func NewSessionResponse(session models.Session) SessionResponse {
	return SessionResponse{
		ID:          session.ID,
		HostID:      session.HostID,
		GuestID:     session.GuestID,
		Topic:       session.Topic,
		ScheduledAt: session.ScheduledAt,
		DurationMin: session.DurationMin,
		RoomURL:     session.RoomURL,
		Status:      session.Status,
		CreatedAt:   session.CreatedAt,
	}
}

// NewSessionResponseSlice converts sessions into DTOs.
func NewSessionResponseSlice(sessions []models.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, NewSessionResponse(session))
	}
	return out
}
