package performance_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/handler"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/realtime"
	"github.com/skillswap/skillswap-api/internal/repository"
	"github.com/skillswap/skillswap-api/internal/service"
)

func setupThreadsPerformanceApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:threads_perf?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Message{}, &models.Notification{}))

	// Seed: user 1 talks to 50 counterparts, 20 messages per thread.
	now := time.Now().UTC()
	for peer := 2; peer <= 51; peer++ {
		peerID := fmt.Sprintf("%d", peer)
		threadID := realtime.ThreadKey("1", peerID)
		for n := 0; n < 20; n++ {
			sender, recipient := "1", peerID
			if n%2 == 0 {
				sender, recipient = peerID, "1"
			}
			message := models.Message{
				ThreadID:    threadID,
				SenderID:    sender,
				RecipientID: recipient,
				Content:     fmt.Sprintf("message %d", n),
				Type:        "text",
				Status:      models.MessageStatusSent,
				CreatedAt:   now.Add(time.Duration(n) * time.Second),
			}
			require.NoError(t, db.Create(&message).Error)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	registry := realtime.NewRegistry(logger)
	dispatcher := realtime.NewDispatcher(registry, messageRepo, notificationRepo, nil, "", nil, validate, logger)
	chatService := service.NewChatService(dispatcher, messageRepo, validate, logger)

	app := fiber.New()
	chatGroup := app.Group("/api/v1/chat", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	handler.NewChatHandler(chatService, validate, logger).Register(chatGroup)

	return app
}

func TestChatThreadsListingP95Under150ms(t *testing.T) {
	app := setupThreadsPerformanceApp(t)

	rounds := 100
	durations := make([]time.Duration, 0, rounds)

	for i := 0; i < rounds; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/threads", nil)

		start := time.Now()
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	p95 := percentile(durations, 0.95)

	if p95 > 150*time.Millisecond {
		t.Fatalf("expected threads listing P95 <= 150ms, got %s", p95)
	}
}
