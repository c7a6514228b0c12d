package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/skillswap/skillswap-api/internal/dto"
)

// remoteEvent is the cross-node representation of a pushed event. Sibling
// nodes re-deliver it to connections registered locally; the source node id
// prevents double delivery on the publishing node.
type remoteEvent struct {
	Source       string                    `json:"source"`
	Kind         string                    `json:"kind"`
	UserID       string                    `json:"user_id"`
	Message      *dto.ChatMessageResponse  `json:"message,omitempty"`
	Typing       *TypingPayload            `json:"typing,omitempty"`
	Notification *dto.NotificationResponse `json:"notification,omitempty"`
	SentAt       time.Time                 `json:"sent_at"`
}

// Start launches the cross-node consumers. A dispatcher without redis and
// nats runs single-node and Start is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.redis != nil && d.redisChannel != "" {
		go d.consumeRedis(ctx)
	}
	if d.nats != nil && d.natsSubject != "" {
		go d.consumeNATS(ctx)
	}
}

func (d *Dispatcher) publishRemote(ctx context.Context, event remoteEvent) {
	if (d.redis == nil || d.redisChannel == "") && (d.nats == nil || d.natsSubject == "") {
		return
	}

	event.Source = d.nodeID
	event.SentAt = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to marshal remote event")
		return
	}

	if d.redis != nil && d.redisChannel != "" {
		if err := d.redis.Publish(ctx, d.redisChannel, payload).Err(); err != nil {
			d.logger.Warn().Err(err).Msg("failed to publish event to redis")
		}
	}

	if d.nats != nil && d.natsSubject != "" {
		if err := d.nats.Publish(d.natsSubject, payload); err != nil {
			d.logger.Warn().Err(err).Msg("failed to publish event to nats")
		}
	}
}

func (d *Dispatcher) consumeRedis(ctx context.Context) {
	pubsub := d.redis.Subscribe(ctx, d.redisChannel)
	defer func() {
		_ = pubsub.Close()
	}()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error().Err(err).Msg("realtime redis subscription closed")
			return
		}
		d.handleRemote([]byte(msg.Payload))
	}
}

func (d *Dispatcher) consumeNATS(ctx context.Context) {
	sub, err := d.nats.QueueSubscribe(d.natsSubject, "skillswap-realtime", func(msg *nats.Msg) {
		d.handleRemote(msg.Data)
	})
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to subscribe to nats realtime subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			d.logger.Warn().Err(err).Msg("failed to drain realtime nats subscription")
		}
	}()
}

func (d *Dispatcher) handleRemote(payload []byte) {
	var event remoteEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		d.logger.Warn().Err(err).Msg("invalid remote event payload")
		return
	}

	if event.Source == d.nodeID || event.UserID == "" {
		return
	}

	switch event.Kind {
	case EventNewMessage:
		if event.Message != nil {
			d.pushToUser(event.UserID, EventNewMessage, newMessagePayload(*event.Message))
		}
	case EventUserTyping:
		if event.Typing != nil {
			d.pushToUser(event.UserID, EventUserTyping, *event.Typing)
		}
	case EventNewNotification:
		if event.Notification != nil {
			d.pushToUser(event.UserID, EventNewNotification, newNotificationPayload(*event.Notification))
		}
	default:
		d.logger.Warn().Str("kind", event.Kind).Msg("unknown remote event kind")
	}
}
