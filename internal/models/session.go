package models

import "time"

// Session statuses.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Session is a scheduled video call between two matched users. The room URL
// is issued by the external conferencing provider at scheduling time.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HostID       string    `gorm:"size:64;index;not null" json:"host_id"`
	GuestID      string    `gorm:"size:64;index;not null" json:"guest_id"`
	Topic        string    `gorm:"size:255" json:"topic"`
	ScheduledAt  time.Time `gorm:"index" json:"scheduled_at"`
	DurationMin  int       `gorm:"default:60" json:"duration_min"`
	RoomURL      string    `gorm:"size:512" json:"room_url"`
	Status       string    `gorm:"size:16;default:scheduled" json:"status"`
	ReminderSent bool      `gorm:"not null;default:false" json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
