package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/repository"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ProfileService manages user profiles and skill discovery.
type ProfileService interface {
	Get(ctx context.Context, id uint, includeEmail bool) (dto.ProfileResponse, error)
	Update(ctx context.Context, id uint, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	SetAvatar(ctx context.Context, id uint, url string) (dto.ProfileResponse, error)
	SearchBySkill(ctx context.Context, skill string, excludeID uint, limit int) ([]dto.ProfileResponse, error)
}

type profileService struct {
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProfileService creates a profile service instance.
func NewProfileService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:     users,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns a profile. The email is only included for the owner's own view.
func (s *profileService) Get(ctx context.Context, id uint, includeEmail bool) (dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}

	response := dto.NewProfileResponse(user)
	if !includeEmail {
		response.Email = ""
	}
	return response, nil
}

func (s *profileService) Update(ctx context.Context, id uint, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Bio != nil {
		user.Bio = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Bio))
	}
	if payload.SkillsOffered != nil {
		user.SkillsOffered = dto.JoinSkills(dto.SplitSkills(*payload.SkillsOffered))
	}
	if payload.SkillsWanted != nil {
		user.SkillsWanted = dto.JoinSkills(dto.SplitSkills(*payload.SkillsWanted))
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return dto.NewProfileResponse(user), nil
}

func (s *profileService) SetAvatar(ctx context.Context, id uint, url string) (dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}

	user.AvatarURL = url
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("failed to store avatar: %w", err)
	}

	return dto.NewProfileResponse(user), nil
}

func (s *profileService) SearchBySkill(ctx context.Context, skill string, excludeID uint, limit int) ([]dto.ProfileResponse, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return []dto.ProfileResponse{}, nil
	}

	users, err := s.users.SearchBySkill(ctx, skill, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return dto.NewProfileResponseSlice(users), nil
}
