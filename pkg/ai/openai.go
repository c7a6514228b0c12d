package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skillswap",
		Subsystem: "ai",
		Name:      "icebreaker_duration_seconds",
		Help:      "Duration of icebreaker generation requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillswap",
		Subsystem: "ai",
		Name:      "icebreaker_failures_total",
		Help:      "Number of icebreaker generation failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements IcebreakerGenerator against the OpenAI chat
// completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 120
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	client := openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey))

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/skillswap/skillswap-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// Suggest asks the model for a single-sentence conversation opener.
func (g *OpenAIGenerator) Suggest(parent context.Context, input IcebreakerInput) (string, error) {
	ctx, span := g.tracer.Start(parent, "openai.icebreaker", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You write friendly one-sentence conversation openers for two people who just " +
					"agreed to teach each other a skill. Reply with the sentence only, no quotes.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildIcebreakerPrompt(input),
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai icebreaker: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	opener := strings.TrimSpace(resp.Choices[0].Message.Content)
	if opener == "" {
		return "", fmt.Errorf("empty icebreaker returned")
	}
	return opener, nil
}

func buildIcebreakerPrompt(input IcebreakerInput) string {
	builder := strings.Builder{}
	builder.WriteString(input.RequesterName)
	builder.WriteString(" will teach ")
	builder.WriteString(input.OfferedSkill)
	builder.WriteString(" and wants to learn ")
	builder.WriteString(input.WantedSkill)
	builder.WriteString(" from ")
	builder.WriteString(input.AddresseeName)
	builder.WriteString(". Suggest how they could open the conversation.")
	return builder.String()
}
