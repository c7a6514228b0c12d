package dto

import (
	"time"

	"github.com/skillswap/skillswap-api/internal/models"
)

// ReviewCreateRequest submits feedback for a completed session.
type ReviewCreateRequest struct {
	SessionID uint   `json:"session_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"omitempty,max=2000"`
}

// ReviewResponse is the serialized representation of a review.
type ReviewResponse struct {
	ID         uint      `json:"id"`
	SessionID  uint      `json:"session_id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewReviewResponse converts a review model into a DTO.
func NewReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:         review.ID,
		SessionID:  review.SessionID,
		ReviewerID: review.ReviewerID,
		RevieweeID: review.RevieweeID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}
}

// NewReviewResponseSlice converts reviews into DTOs.
func NewReviewResponseSlice(reviews []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, NewReviewResponse(review))
	}
	return out
}
