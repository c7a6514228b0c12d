package models

import "time"

// User represents a registered member offering and seeking skills.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	Name          string    `gorm:"size:128;not null" json:"name"`
	Bio           string    `gorm:"type:text" json:"bio"`
	AvatarURL     string    `gorm:"size:512" json:"avatar_url"`
	SkillsOffered string    `gorm:"type:text" json:"skills_offered"`
	SkillsWanted  string    `gorm:"type:text" json:"skills_wanted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
