package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/repository"
)

const (
	reminderInterval = time.Minute
	reminderWindow   = 15 * time.Minute
)

var (
	// ErrSessionNotFound indicates the session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionForbidden indicates the caller is not a session participant.
	ErrSessionForbidden = errors.New("not a participant of this session")
	// ErrSessionResolved indicates the session already left the scheduled state.
	ErrSessionResolved = errors.New("session already resolved")
	// ErrSessionInPast indicates the requested time is not in the future.
	ErrSessionInPast = errors.New("session must be scheduled in the future")
)

// RoomProvider provisions a video room for a scheduled session.
type RoomProvider interface {
	CreateRoom(ctx context.Context, topic string) (string, error)
}

// SessionService schedules video sessions and drives their reminders.
type SessionService interface {
	Schedule(ctx context.Context, hostID string, payload dto.SessionCreateRequest) (dto.SessionResponse, error)
	Cancel(ctx context.Context, userID string, id uint) (dto.SessionResponse, error)
	Complete(ctx context.Context, userID string, id uint) (dto.SessionResponse, error)
	List(ctx context.Context, userID string, limit, offset int) ([]dto.SessionResponse, error)
	StartReminderLoop(ctx context.Context)
}

type sessionService struct {
	sessions  repository.SessionRepository
	notifier  NotificationPublisher
	rooms     RoomProvider
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSessionService creates a session service. The room provider is optional;
// without it sessions are created without a room URL.
func NewSessionService(sessions repository.SessionRepository, notifier NotificationPublisher, rooms RoomProvider, validate *validator.Validate, logger zerolog.Logger) SessionService {
	return &sessionService{
		sessions:  sessions,
		notifier:  notifier,
		rooms:     rooms,
		validator: validate,
		logger:    logger.With().Str("component", "session_service").Logger(),
		now:       time.Now,
	}
}

// Schedule creates a session, provisions its room and notifies the guest.
func (s *sessionService) Schedule(ctx context.Context, hostID string, payload dto.SessionCreateRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	guestID := strings.TrimSpace(payload.GuestID)
	if guestID == hostID {
		return dto.SessionResponse{}, ErrSelfMatch
	}
	if !payload.ScheduledAt.After(s.now()) {
		return dto.SessionResponse{}, ErrSessionInPast
	}

	duration := payload.DurationMin
	if duration == 0 {
		duration = 60
	}

	session := models.Session{
		HostID:      hostID,
		GuestID:     guestID,
		Topic:       strings.TrimSpace(payload.Topic),
		ScheduledAt: payload.ScheduledAt,
		DurationMin: duration,
		Status:      models.SessionStatusScheduled,
	}

	if s.rooms != nil {
		roomURL, err := s.rooms.CreateRoom(ctx, session.Topic)
		if err != nil {
			s.logger.Warn().Err(err).Str("topic", session.Topic).Msg("room provisioning failed, scheduling without room")
		} else {
			session.RoomURL = roomURL
		}
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, fmt.Errorf("failed to create session: %w", err)
	}

	if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  guestID,
		Type:    models.NotificationTypeSessionScheduled,
		Title:   "Session scheduled",
		Message: fmt.Sprintf("A session on %s was scheduled with you", session.Topic),
		Data: map[string]any{
			"session_id":   session.ID,
			"room_url":     session.RoomURL,
			"scheduled_at": session.ScheduledAt.Format(time.RFC3339),
		},
	}); err != nil {
		s.logger.Warn().Err(err).Uint("session_id", session.ID).Msg("failed to notify scheduled session")
	}

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Cancel(ctx context.Context, userID string, id uint) (dto.SessionResponse, error) {
	return s.transition(ctx, userID, id, models.SessionStatusCancelled)
}

func (s *sessionService) Complete(ctx context.Context, userID string, id uint) (dto.SessionResponse, error) {
	return s.transition(ctx, userID, id, models.SessionStatusCompleted)
}

func (s *sessionService) List(ctx context.Context, userID string, limit, offset int) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return dto.NewSessionResponseSlice(sessions), nil
}

// StartReminderLoop periodically reminds both participants of sessions
// starting soon. It returns when the context is cancelled.
func (s *sessionService) StartReminderLoop(ctx context.Context) {
	ticker := time.NewTicker(reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.remindDue(ctx)
		}
	}
}

func (s *sessionService) remindDue(ctx context.Context) {
	due, err := s.sessions.DueForReminder(ctx, s.now(), reminderWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to query sessions due for reminder")
		return
	}

	for _, session := range due {
		data := map[string]any{
			"session_id":   session.ID,
			"room_url":     session.RoomURL,
			"scheduled_at": session.ScheduledAt.Format(time.RFC3339),
		}
		message := fmt.Sprintf("Your session on %s starts at %s", session.Topic, session.ScheduledAt.Format(time.Kitchen))

		for _, participant := range []string{session.HostID, session.GuestID} {
			if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
				UserID:  participant,
				Type:    models.NotificationTypeSessionReminder,
				Title:   "Session starting soon",
				Message: message,
				Data:    data,
			}); err != nil {
				s.logger.Warn().Err(err).Uint("session_id", session.ID).Str("user_id", participant).Msg("failed to publish session reminder")
			}
		}

		if err := s.sessions.MarkReminded(ctx, session.ID); err != nil {
			s.logger.Warn().Err(err).Uint("session_id", session.ID).Msg("failed to mark session reminded")
		}
	}
}

func (s *sessionService) transition(ctx context.Context, userID string, id uint, status string) (dto.SessionResponse, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrSessionNotFound
		}
		return dto.SessionResponse{}, fmt.Errorf("failed to load session: %w", err)
	}

	if session.HostID != userID && session.GuestID != userID {
		return dto.SessionResponse{}, ErrSessionForbidden
	}
	if session.Status != models.SessionStatusScheduled {
		return dto.SessionResponse{}, ErrSessionResolved
	}

	session.Status = status
	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, fmt.Errorf("failed to update session: %w", err)
	}
	return dto.NewSessionResponse(session), nil
}
