package models

import "time"

// Review is feedback left by one session participant about the other.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  uint      `gorm:"index;not null" json:"session_id"`
	ReviewerID string    `gorm:"size:64;index;not null" json:"reviewer_id"`
	RevieweeID string    `gorm:"size:64;index;not null" json:"reviewee_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
