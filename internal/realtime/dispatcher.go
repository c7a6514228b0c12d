package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/observability"
	"github.com/skillswap/skillswap-api/internal/repository"
)

const defaultPersistTimeout = 5 * time.Second

// ErrInvalidEvent indicates an event was rejected before any persistence or
// dispatch attempt.
var ErrInvalidEvent = errors.New("invalid event payload")

// Dispatcher accepts typed events from producers (inbound socket frames or
// internal services), persists the durable kinds, resolves targets through
// the presence registry, and pushes to every resolved connection. Delivery is
// best-effort: a recipient with no live connections is a delivery miss, not
// an error, because the persisted record remains queryable.
type Dispatcher struct {
	registry      *Registry
	messages      repository.MessageRepository
	notifications repository.NotificationRepository

	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string

	validator      *validator.Validate
	sanitizer      *bluemonday.Policy
	logger         zerolog.Logger
	tracer         trace.Tracer
	schemas        map[string]*jsonschema.Schema
	nodeID         string
	persistTimeout time.Duration
}

// NewDispatcher constructs the event dispatcher. The redis client and nats
// connection are optional; when present, events are republished so sibling
// nodes can reach connections registered elsewhere.
func NewDispatcher(registry *Registry, messages repository.MessageRepository, notifications repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) *Dispatcher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &Dispatcher{
		registry:       registry,
		messages:       messages,
		notifications:  notifications,
		redis:          redisClient,
		redisChannel:   channel,
		nats:           natsConn,
		natsSubject:    subject,
		validator:      validate,
		sanitizer:      bluemonday.UGCPolicy(),
		logger:         logger.With().Str("component", "dispatcher").Logger(),
		tracer:         otel.Tracer("github.com/skillswap/skillswap-api/internal/realtime"),
		schemas:        compileNotificationSchemas(),
		nodeID:         uuid.NewString(),
		persistTimeout: defaultPersistTimeout,
	}
}

// Registry exposes the presence registry owned by the dispatch layer.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// SendMessage persists a chat message and delivers it: one new-message push
// per live recipient connection, one message-sent acknowledgment to the
// originating connection. On persistence failure the message is not
// forwarded and the originator receives message-error with a retryable flag;
// the dispatcher never retries on its own.
func (d *Dispatcher) SendMessage(ctx context.Context, origin Conn, senderID string, payload dto.ChatSendRequest) (dto.ChatMessageResponse, error) {
	payload.RecipientID = strings.TrimSpace(payload.RecipientID)
	if err := d.validator.Struct(payload); err != nil {
		d.rejectMessage(origin, err.Error(), false)
		return dto.ChatMessageResponse{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	clean := strings.TrimSpace(d.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		d.rejectMessage(origin, "message content empty after sanitization", false)
		return dto.ChatMessageResponse{}, fmt.Errorf("%w: empty content", ErrInvalidEvent)
	}

	messageType := payload.Type
	if messageType == "" {
		messageType = "text"
	}

	spanCtx, span := d.tracer.Start(ctx, "realtime.send_message", trace.WithAttributes(
		attribute.String("chat.sender_id", senderID),
		attribute.String("chat.recipient_id", payload.RecipientID),
		attribute.String("chat.type", messageType),
	))
	defer span.End()

	model := models.Message{
		ThreadID:    ThreadKey(senderID, payload.RecipientID),
		SenderID:    senderID,
		RecipientID: payload.RecipientID,
		Content:     clean,
		Type:        messageType,
		Status:      models.MessageStatusSent,
	}

	persistCtx, cancel := context.WithTimeout(spanCtx, d.persistTimeout)
	defer cancel()

	if err := d.messages.Create(persistCtx, &model); err != nil {
		span.RecordError(err)
		d.rejectMessage(origin, "failed to store message", retryable(err))
		return dto.ChatMessageResponse{}, err
	}

	response := dto.NewChatMessageResponse(model)
	delivered := d.pushToUser(payload.RecipientID, EventNewMessage, newMessagePayload(response))

	if origin != nil {
		origin.Push(EventMessageSent, AckPayload{ID: model.ID, Status: model.Status})
	}

	if delivered == 0 {
		observability.DeliveryMisses().Inc()
		d.logger.Debug().Str("recipient_id", payload.RecipientID).Str("thread_id", model.ThreadID).Msg("recipient offline, message stored only")
		d.notifyOffline(spanCtx, response)
	}

	d.publishRemote(spanCtx, remoteEvent{
		Kind:    EventNewMessage,
		UserID:  payload.RecipientID,
		Message: &response,
	})

	observability.ChatMessagesSent().WithLabelValues(messageType).Inc()

	return response, nil
}

// Typing forwards a typing indicator to the counterpart's connections.
// Best-effort: nothing is persisted and no acknowledgment is produced.
func (d *Dispatcher) Typing(ctx context.Context, senderID string, payload dto.TypingRequest) error {
	payload.RecipientID = strings.TrimSpace(payload.RecipientID)
	if err := d.validator.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if payload.RecipientID == senderID {
		return nil
	}

	indicator := TypingPayload{Sender: senderID, IsTyping: payload.IsTyping}
	d.pushToUser(payload.RecipientID, EventUserTyping, indicator)
	d.publishRemote(ctx, remoteEvent{
		Kind:   EventUserTyping,
		UserID: payload.RecipientID,
		Typing: &indicator,
	})
	return nil
}

// Notify persists a notification and fans it out to every connection the
// owner currently has open. The type tag must come from the fixed producer
// set and the payload bag must satisfy that type's schema.
func (d *Dispatcher) Notify(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := d.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	if err := d.validateData(payload.Type, payload.Data); err != nil {
		return dto.NotificationResponse{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	cleanTitle := strings.TrimSpace(d.sanitizer.Sanitize(payload.Title))
	cleanMessage := strings.TrimSpace(d.sanitizer.Sanitize(payload.Message))
	if cleanTitle == "" || cleanMessage == "" {
		return dto.NotificationResponse{}, fmt.Errorf("%w: empty title or message after sanitization", ErrInvalidEvent)
	}

	spanCtx, span := d.tracer.Start(ctx, "realtime.notify", trace.WithAttributes(
		attribute.String("notification.user_id", payload.UserID),
		attribute.String("notification.type", payload.Type),
	))
	defer span.End()

	model := models.Notification{
		UserID:  payload.UserID,
		Type:    payload.Type,
		Title:   cleanTitle,
		Message: cleanMessage,
		Data:    payload.Data,
	}

	persistCtx, cancel := context.WithTimeout(spanCtx, d.persistTimeout)
	defer cancel()

	if err := d.notifications.Create(persistCtx, &model); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(model)
	if delivered := d.pushToUser(payload.UserID, EventNewNotification, newNotificationPayload(response)); delivered == 0 {
		observability.DeliveryMisses().Inc()
		d.logger.Debug().Str("user_id", payload.UserID).Str("type", payload.Type).Msg("owner offline, notification stored only")
	}

	d.publishRemote(spanCtx, remoteEvent{
		Kind:         EventNewNotification,
		UserID:       payload.UserID,
		Notification: &response,
	})

	observability.NotificationsPublished().WithLabelValues(payload.Type).Inc()

	return response, nil
}

func (d *Dispatcher) pushToUser(userID, event string, data any) int {
	delivered := 0
	for _, conn := range d.registry.ConnectionsFor(userID) {
		if conn.Push(event, data) {
			delivered++
		} else {
			d.logger.Warn().Str("user_id", userID).Str("connection_id", conn.ID()).Str("event", event).Msg("dropping event for slow connection")
		}
	}
	return delivered
}

func (d *Dispatcher) rejectMessage(origin Conn, reason string, retryable bool) {
	if origin == nil {
		return
	}
	origin.Push(EventMessageError, ErrorPayload{Error: reason, Retryable: retryable})
}

// notifyOffline leaves a durable message notification so an offline recipient
// discovers the conversation on next fetch.
func (d *Dispatcher) notifyOffline(ctx context.Context, message dto.ChatMessageResponse) {
	notification := models.Notification{
		UserID:  message.RecipientID,
		Type:    models.NotificationTypeMessage,
		Title:   "New message",
		Message: "You have a new message waiting",
		Data: map[string]any{
			"thread_id": message.ThreadID,
			"sender_id": message.SenderID,
		},
	}

	persistCtx, cancel := context.WithTimeout(ctx, d.persistTimeout)
	defer cancel()

	if err := d.notifications.Create(persistCtx, &notification); err != nil {
		d.logger.Warn().Err(err).Str("recipient_id", message.RecipientID).Msg("failed to store offline message notification")
		return
	}
	observability.NotificationsPublished().WithLabelValues(models.NotificationTypeMessage).Inc()
}

func (d *Dispatcher) validateData(notificationType string, data map[string]any) error {
	schema, ok := d.schemas[notificationType]
	if !ok {
		return nil
	}

	if data == nil {
		data = map[string]any{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	return schema.Validate(decoded)
}

func retryable(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrInvalidData) {
		return false
	}
	return true
}

// Schemas for the per-type notification payload bags. Each producer owns a
// fixed shape; anything extra is tolerated, missing required keys are not.
var notificationSchemaSources = map[string]string{
	models.NotificationTypeMessage:          `{"type":"object","required":["thread_id","sender_id"],"properties":{"thread_id":{"type":"string"},"sender_id":{"type":"string"}}}`,
	models.NotificationTypeMatchRequest:     `{"type":"object","required":["match_id","requester_id"],"properties":{"match_id":{"type":"number"},"requester_id":{"type":"string"}}}`,
	models.NotificationTypeMatchAccepted:    `{"type":"object","required":["match_id"],"properties":{"match_id":{"type":"number"},"icebreaker":{"type":"string"}}}`,
	models.NotificationTypeSessionScheduled: `{"type":"object","required":["session_id","room_url"],"properties":{"session_id":{"type":"number"},"room_url":{"type":"string"},"scheduled_at":{"type":"string"}}}`,
	models.NotificationTypeSessionReminder:  `{"type":"object","required":["session_id"],"properties":{"session_id":{"type":"number"},"room_url":{"type":"string"},"scheduled_at":{"type":"string"}}}`,
	models.NotificationTypeReviewReceived:   `{"type":"object","required":["review_id","rating"],"properties":{"review_id":{"type":"number"},"rating":{"type":"number"}}}`,
}

func compileNotificationSchemas() map[string]*jsonschema.Schema {
	compiled := make(map[string]*jsonschema.Schema, len(notificationSchemaSources))
	for name, source := range notificationSchemaSources {
		compiler := jsonschema.NewCompiler()
		url := name + ".schema.json"
		if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
			panic(err)
		}
		compiled[name] = compiler.MustCompile(url)
	}
	return compiled
}
