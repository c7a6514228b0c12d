package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/repository"
)

type roomProviderStub struct {
	url string
	err error
}

func (s *roomProviderStub) CreateRoom(context.Context, string) (string, error) {
	return s.url, s.err
}

type sessionFixture struct {
	svc       SessionService
	db        *gorm.DB
	publisher *stubPublisher
	now       time.Time
}

func newSessionFixture(t *testing.T, rooms RoomProvider) sessionFixture {
	t.Helper()
	db := newServiceDB(t, &models.Session{})
	publisher := &stubPublisher{}
	svc := NewSessionService(repository.NewSessionRepository(db), publisher, rooms, newTestValidator(), testLogger())

	now := time.Now()
	svc.(*sessionService).now = func() time.Time { return now }

	return sessionFixture{svc: svc, db: db, publisher: publisher, now: now}
}

func TestSessionScheduleProvisionsRoomAndNotifiesGuest(t *testing.T) {
	f := newSessionFixture(t, &roomProviderStub{url: "https://meet.example.com/abc"})

	session, err := f.svc.Schedule(context.Background(), "1", dto.SessionCreateRequest{
		GuestID:     "2",
		Topic:       "Guitar basics",
		ScheduledAt: f.now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "https://meet.example.com/abc", session.RoomURL)
	require.Equal(t, 60, session.DurationMin)
	require.Equal(t, models.SessionStatusScheduled, session.Status)

	require.Len(t, f.publisher.published, 1)
	published := f.publisher.published[0]
	require.Equal(t, "2", published.UserID)
	require.Equal(t, models.NotificationTypeSessionScheduled, published.Type)
	require.Equal(t, session.RoomURL, published.Data["room_url"])
}

func TestSessionScheduleSurvivesRoomProvisioningFailure(t *testing.T) {
	f := newSessionFixture(t, &roomProviderStub{err: errors.New("provider down")})

	session, err := f.svc.Schedule(context.Background(), "1", dto.SessionCreateRequest{
		GuestID:     "2",
		Topic:       "Guitar basics",
		ScheduledAt: f.now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Empty(t, session.RoomURL)
}

func TestSessionScheduleRejectsPastAndSelf(t *testing.T) {
	f := newSessionFixture(t, nil)

	_, err := f.svc.Schedule(context.Background(), "1", dto.SessionCreateRequest{
		GuestID:     "2",
		Topic:       "Guitar basics",
		ScheduledAt: f.now.Add(-time.Hour),
	})
	require.ErrorIs(t, err, ErrSessionInPast)

	_, err = f.svc.Schedule(context.Background(), "1", dto.SessionCreateRequest{
		GuestID:     "1",
		Topic:       "Guitar basics",
		ScheduledAt: f.now.Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrSelfMatch)
}

func TestSessionTransitionsRequireParticipantAndScheduledState(t *testing.T) {
	f := newSessionFixture(t, nil)

	session, err := f.svc.Schedule(context.Background(), "1", dto.SessionCreateRequest{
		GuestID:     "2",
		Topic:       "Guitar basics",
		ScheduledAt: f.now.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), "3", session.ID)
	require.ErrorIs(t, err, ErrSessionForbidden)

	completed, err := f.svc.Complete(context.Background(), "2", session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusCompleted, completed.Status)

	_, err = f.svc.Cancel(context.Background(), "1", session.ID)
	require.ErrorIs(t, err, ErrSessionResolved)

	_, err = f.svc.Cancel(context.Background(), "1", 999)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRemindDueNotifiesBothParticipantsOnce(t *testing.T) {
	f := newSessionFixture(t, nil)

	_, err := f.svc.Schedule(context.Background(), "1", dto.SessionCreateRequest{
		GuestID:     "2",
		Topic:       "Guitar basics",
		ScheduledAt: f.now.Add(10 * time.Minute),
	})
	require.NoError(t, err)
	f.publisher.published = nil

	impl := f.svc.(*sessionService)
	impl.remindDue(context.Background())

	require.Len(t, f.publisher.published, 2)
	recipients := []string{f.publisher.published[0].UserID, f.publisher.published[1].UserID}
	require.ElementsMatch(t, []string{"1", "2"}, recipients)
	for _, published := range f.publisher.published {
		require.Equal(t, models.NotificationTypeSessionReminder, published.Type)
	}

	// A second sweep finds nothing left to remind.
	f.publisher.published = nil
	impl.remindDue(context.Background())
	require.Empty(t, f.publisher.published)
}
