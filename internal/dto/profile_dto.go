package dto

import (
	"strings"
	"time"

	"github.com/skillswap/skillswap-api/internal/models"
)

// ProfileUpdateRequest modifies the caller's own profile.
type ProfileUpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=128"`
	Bio           *string `json:"bio" validate:"omitempty,max=2000"`
	SkillsOffered *string `json:"skills_offered" validate:"omitempty,max=1000"`
	SkillsWanted  *string `json:"skills_wanted" validate:"omitempty,max=1000"`
}

// ProfileResponse is the public representation of a user.
type ProfileResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email,omitempty"`
	Name          string    `json:"name"`
	Bio           string    `json:"bio"`
	AvatarURL     string    `json:"avatar_url"`
	SkillsOffered []string  `json:"skills_offered"`
	SkillsWanted  []string  `json:"skills_wanted"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProfileResponse converts a user model into its public DTO.
func NewProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Bio:           user.Bio,
		AvatarURL:     user.AvatarURL,
		SkillsOffered: SplitSkills(user.SkillsOffered),
		SkillsWanted:  SplitSkills(user.SkillsWanted),
		CreatedAt:     user.CreatedAt,
	}
}

// NewProfileResponseSlice converts users into public DTOs without emails.
func NewProfileResponseSlice(users []models.User) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(users))
	for _, user := range users {
		response := NewProfileResponse(user)
		response.Email = ""
		out = append(out, response)
	}
	return out
}

// SplitSkills parses the comma-separated skill column into a clean slice.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinSkills normalises a skill slice back into the stored column format.
func JoinSkills(skills []string) string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, ",")
}

// UploadResponse describes a stored upload.
type UploadResponse struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}
