package models

import "time"

// Match request statuses.
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusDeclined = "declined"
)

// Match is a skill-exchange request from one user to another.
type Match struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RequesterID  string    `gorm:"size:64;index;not null" json:"requester_id"`
	AddresseeID  string    `gorm:"size:64;index;not null" json:"addressee_id"`
	OfferedSkill string    `gorm:"size:128" json:"offered_skill"`
	WantedSkill  string    `gorm:"size:128" json:"wanted_skill"`
	Intro        string    `gorm:"type:text" json:"intro"`
	Status       string    `gorm:"size:16;default:pending" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
