package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/realtime"
	"github.com/skillswap/skillswap-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newServiceDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

// stubPublisher records published notifications without touching a dispatcher.
type stubPublisher struct {
	published []dto.NotificationCreateRequest
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if p.err != nil {
		return dto.NotificationResponse{}, p.err
	}
	p.published = append(p.published, payload)
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type}, nil
}

// stubConn collects realtime envelopes pushed toward one connection.
type stubConn struct {
	id     string
	events []realtime.Envelope
}

func (c *stubConn) ID() string { return c.id }

func (c *stubConn) Push(event string, data any) bool {
	c.events = append(c.events, realtime.Envelope{Event: event, Data: data})
	return true
}

func newCommunicationDispatcher(t *testing.T) (*realtime.Dispatcher, repository.MessageRepository, repository.NotificationRepository) {
	t.Helper()
	db := newServiceDB(t, &models.Message{}, &models.Notification{})
	messages := repository.NewMessageRepository(db)
	notifications := repository.NewNotificationRepository(db)
	registry := realtime.NewRegistry(testLogger())
	dispatcher := realtime.NewDispatcher(registry, messages, notifications, nil, "", nil, newTestValidator(), testLogger())
	return dispatcher, messages, notifications
}
