package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/handler"
	"github.com/skillswap/skillswap-api/internal/models"
)

type stubNotificationService struct {
	list dto.NotificationListResponse
}

func (s stubNotificationService) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (s stubNotificationService) List(context.Context, string, int, int) (dto.NotificationListResponse, error) {
	return s.list, nil
}

func (s stubNotificationService) MarkRead(context.Context, string, uint) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (s stubNotificationService) MarkAllRead(context.Context, string) error { return nil }

func (s stubNotificationService) Delete(context.Context, string, uint) error { return nil }

func TestNotificationListContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "notification_list.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	serviceStub := stubNotificationService{
		list: dto.NotificationListResponse{
			Items: []dto.NotificationResponse{
				{
					ID:        1,
					UserID:    "2",
					Type:      models.NotificationTypeMatchRequest,
					Title:     "New match request",
					Message:   "Ana wants to swap guitar for spanish",
					Data:      map[string]any{"match_id": 7, "requester_id": "1"},
					Read:      false,
					CreatedAt: now,
					UpdatedAt: now,
				},
				{
					ID:        2,
					UserID:    "2",
					Type:      models.NotificationTypeSessionReminder,
					Title:     "Session starting soon",
					Message:   "Your session on Guitar basics starts at 5:00PM",
					Data:      map[string]any{"session_id": 3},
					Read:      true,
					CreatedAt: now,
					UpdatedAt: now,
				},
			},
			UnreadCount: 1,
		},
	}

	app := fiber.New()
	group := app.Group("/api/v1/notifications", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(2))
		return c.Next()
	})
	handler.NewNotificationHandler(serviceStub, zerolog.Nop()).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.True(t, envelope.Success)

	var decoded any
	require.NoError(t, json.Unmarshal(envelope.Data, &decoded))
	require.NoError(t, schema.Validate(decoded))
}
