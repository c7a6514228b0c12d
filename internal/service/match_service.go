package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/repository"
	"github.com/skillswap/skillswap-api/pkg/ai"
)

const icebreakerTimeout = 10 * time.Second

var (
	// ErrMatchNotFound indicates the match does not exist.
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchForbidden indicates the caller is not the match addressee.
	ErrMatchForbidden = errors.New("not allowed to act on this match")
	// ErrMatchResolved indicates the match already left the pending state.
	ErrMatchResolved = errors.New("match already resolved")
	// ErrSelfMatch indicates a user tried to request a match with themselves.
	ErrSelfMatch = errors.New("cannot request a match with yourself")
	// ErrDuplicateMatch indicates an identical pending request already exists.
	ErrDuplicateMatch = errors.New("a pending request toward this user already exists")
)

// MatchService manages skill-exchange requests between users.
type MatchService interface {
	Request(ctx context.Context, requesterID string, payload dto.MatchCreateRequest) (dto.MatchResponse, error)
	Accept(ctx context.Context, userID string, id uint) (dto.MatchResponse, error)
	Decline(ctx context.Context, userID string, id uint) (dto.MatchResponse, error)
	List(ctx context.Context, userID string, status string, limit, offset int) ([]dto.MatchResponse, error)
	Suggestions(ctx context.Context, userID uint, limit int) ([]dto.ProfileResponse, error)
}

type matchService struct {
	matches    repository.MatchRepository
	users      repository.UserRepository
	notifier   NotificationPublisher
	icebreaker ai.IcebreakerGenerator
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewMatchService creates a match service. The icebreaker generator is
// optional; without it accepted matches simply carry no suggested opener.
func NewMatchService(matches repository.MatchRepository, users repository.UserRepository, notifier NotificationPublisher, icebreaker ai.IcebreakerGenerator, validate *validator.Validate, logger zerolog.Logger) MatchService {
	return &matchService{
		matches:    matches,
		users:      users,
		notifier:   notifier,
		icebreaker: icebreaker,
		validator:  validate,
		logger:     logger.With().Str("component", "match_service").Logger(),
	}
}

func (s *matchService) Request(ctx context.Context, requesterID string, payload dto.MatchCreateRequest) (dto.MatchResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MatchResponse{}, err
	}

	addresseeID := strings.TrimSpace(payload.AddresseeID)
	if addresseeID == requesterID {
		return dto.MatchResponse{}, ErrSelfMatch
	}

	if _, err := s.matches.FindPendingBetween(ctx, requesterID, addresseeID); err == nil {
		return dto.MatchResponse{}, ErrDuplicateMatch
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.MatchResponse{}, fmt.Errorf("failed to check pending matches: %w", err)
	}

	match := models.Match{
		RequesterID:  requesterID,
		AddresseeID:  addresseeID,
		OfferedSkill: strings.TrimSpace(payload.OfferedSkill),
		WantedSkill:  strings.TrimSpace(payload.WantedSkill),
		Intro:        strings.TrimSpace(payload.Intro),
		Status:       models.MatchStatusPending,
	}

	if err := s.matches.Create(ctx, &match); err != nil {
		return dto.MatchResponse{}, fmt.Errorf("failed to create match: %w", err)
	}

	requesterName := s.lookupName(ctx, requesterID)
	if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  addresseeID,
		Type:    models.NotificationTypeMatchRequest,
		Title:   "New match request",
		Message: fmt.Sprintf("%s wants to swap %s for %s", requesterName, match.OfferedSkill, match.WantedSkill),
		Data: map[string]any{
			"match_id":     match.ID,
			"requester_id": requesterID,
		},
	}); err != nil {
		s.logger.Warn().Err(err).Uint("match_id", match.ID).Msg("failed to notify match request")
	}

	return dto.NewMatchResponse(match), nil
}

// Accept resolves a pending match in the requester's favor. The requester is
// notified; when an icebreaker generator is configured, its suggested opener
// rides along in the notification data.
func (s *matchService) Accept(ctx context.Context, userID string, id uint) (dto.MatchResponse, error) {
	match, err := s.resolve(ctx, userID, id, models.MatchStatusAccepted)
	if err != nil {
		return dto.MatchResponse{}, err
	}

	data := map[string]any{"match_id": match.ID}
	if opener := s.generateIcebreaker(ctx, match); opener != "" {
		data["icebreaker"] = opener
	}

	addresseeName := s.lookupName(ctx, match.AddresseeID)
	if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  match.RequesterID,
		Type:    models.NotificationTypeMatchAccepted,
		Title:   "Match accepted",
		Message: fmt.Sprintf("%s accepted your skill swap request", addresseeName),
		Data:    data,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("match_id", match.ID).Msg("failed to notify match acceptance")
	}

	return dto.NewMatchResponse(match), nil
}

func (s *matchService) Decline(ctx context.Context, userID string, id uint) (dto.MatchResponse, error) {
	match, err := s.resolve(ctx, userID, id, models.MatchStatusDeclined)
	if err != nil {
		return dto.MatchResponse{}, err
	}
	return dto.NewMatchResponse(match), nil
}

func (s *matchService) List(ctx context.Context, userID string, status string, limit, offset int) ([]dto.MatchResponse, error) {
	matches, err := s.matches.ListForUser(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return dto.NewMatchResponseSlice(matches), nil
}

// Suggestions finds users offering any of the caller's wanted skills.
func (s *matchService) Suggestions(ctx context.Context, userID uint, limit int) ([]dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if limit <= 0 || limit > 50 {
		limit = 20
	}

	seen := make(map[uint]struct{})
	out := make([]dto.ProfileResponse, 0, limit)

	for _, skill := range dto.SplitSkills(user.SkillsWanted) {
		candidates, err := s.users.SearchBySkill(ctx, skill, userID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to search by skill: %w", err)
		}
		for _, candidate := range candidates {
			if _, ok := seen[candidate.ID]; ok {
				continue
			}
			seen[candidate.ID] = struct{}{}
			response := dto.NewProfileResponse(candidate)
			response.Email = ""
			out = append(out, response)
			if len(out) >= limit {
				return out, nil
			}
		}
	}

	return out, nil
}

// resolve transitions a pending match to the given terminal status. Only the
// addressee may resolve, and only once.
func (s *matchService) resolve(ctx context.Context, userID string, id uint, status string) (models.Match, error) {
	match, err := s.matches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Match{}, ErrMatchNotFound
		}
		return models.Match{}, fmt.Errorf("failed to load match: %w", err)
	}

	if match.AddresseeID != userID {
		return models.Match{}, ErrMatchForbidden
	}
	if match.Status != models.MatchStatusPending {
		return models.Match{}, ErrMatchResolved
	}

	match.Status = status
	if err := s.matches.Update(ctx, &match); err != nil {
		return models.Match{}, fmt.Errorf("failed to update match: %w", err)
	}
	return match, nil
}

func (s *matchService) generateIcebreaker(ctx context.Context, match models.Match) string {
	if s.icebreaker == nil {
		return ""
	}

	genCtx, cancel := context.WithTimeout(ctx, icebreakerTimeout)
	defer cancel()

	opener, err := s.icebreaker.Suggest(genCtx, ai.IcebreakerInput{
		RequesterName: s.lookupName(ctx, match.RequesterID),
		AddresseeName: s.lookupName(ctx, match.AddresseeID),
		OfferedSkill:  match.OfferedSkill,
		WantedSkill:   match.WantedSkill,
	})
	if err != nil {
		s.logger.Debug().Err(err).Uint("match_id", match.ID).Msg("icebreaker generation failed")
		return ""
	}
	return opener
}

func (s *matchService) lookupName(ctx context.Context, userID string) string {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return "A member"
	}
	user, err := s.users.FindByID(ctx, uint(id))
	if err != nil {
		return "A member"
	}
	return user.Name
}
