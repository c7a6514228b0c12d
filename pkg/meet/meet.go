package meet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config contains credentials for the video meeting provider.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Service provisions meeting rooms through the provider's REST API. It
// implements the RoomProvider interface of the session service.
type Service struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// New constructs a meeting room provider.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("meeting provider url and api key must be provided")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Service{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "meet").Logger(),
	}, nil
}

type createRoomRequest struct {
	Name string `json:"roomNamePrefix"`
}

type createRoomResponse struct {
	RoomURL string `json:"roomUrl"`
}

// CreateRoom provisions a new room named after the session topic and returns
// its join URL.
func (s *Service) CreateRoom(ctx context.Context, topic string) (string, error) {
	body, err := json.Marshal(createRoomRequest{Name: slugify(topic)})
	if err != nil {
		return "", fmt.Errorf("failed to encode room request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/meetings", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build room request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+s.apiKey)

	response, err := s.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to call meeting provider: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("meeting provider returned status %d", response.StatusCode)
	}

	var decoded createRoomResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode room response: %w", err)
	}
	if decoded.RoomURL == "" {
		return "", fmt.Errorf("meeting provider returned no room url")
	}

	s.logger.Info().Str("room_url", decoded.RoomURL).Msg("meeting room provisioned")

	return decoded.RoomURL, nil
}

func slugify(topic string) string {
	slug := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(topic))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "session"
	}
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return slug
}
