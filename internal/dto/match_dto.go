package dto

import (
	"time"

	"github.com/skillswap/skillswap-api/internal/models"
)

// MatchCreateRequest opens a skill-exchange request toward another user.
type MatchCreateRequest struct {
	AddresseeID  string `json:"addressee_id" validate:"required,max=64"`
	OfferedSkill string `json:"offered_skill" validate:"required,min=2,max=128"`
	WantedSkill  string `json:"wanted_skill" validate:"required,min=2,max=128"`
	Intro        string `json:"intro" validate:"omitempty,max=2000"`
}

// MatchResponse is the serialized representation of a match.
type MatchResponse struct {
	ID           uint      `json:"id"`
	RequesterID  string    `json:"requester_id"`
	AddresseeID  string    `json:"addressee_id"`
	OfferedSkill string    `json:"offered_skill"`
	WantedSkill  string    `json:"wanted_skill"`
	Intro        string    `json:"intro,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewMatchResponse converts a match model into a DTO.
func NewMatchResponse(match models.Match) MatchResponse {
	return MatchResponse{
		ID:           match.ID,
		RequesterID:  match.RequesterID,
		AddresseeID:  match.AddresseeID,
		OfferedSkill: match.OfferedSkill,
		WantedSkill:  match.WantedSkill,
		Intro:        match.Intro,
		Status:       match.Status,
		CreatedAt:    match.CreatedAt,
		UpdatedAt:    match.UpdatedAt,
	}
}

// NewMatchResponseSlice converts matches into DTOs.
func NewMatchResponseSlice(matches []models.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, match := range matches {
		out = append(out, NewMatchResponse(match))
	}
	return out
}
