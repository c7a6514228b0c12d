package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/observability"
	"github.com/skillswap/skillswap-api/internal/realtime"
	"github.com/skillswap/skillswap-api/internal/repository"
)

const chatSendBufferSize = 32

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	UserID        string
	CorrelationID string
	Context       context.Context
}

// ChatService manages websocket connections and conversation history. A
// served connection is registered into the presence registry under its user,
// so chat messages, typing indicators and notifications all reach it.
type ChatService interface {
	ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions)
	History(ctx context.Context, userID string, query dto.ChatHistoryQuery) ([]dto.ChatMessageResponse, error)
	Threads(ctx context.Context, userID string) ([]dto.ThreadSummaryResponse, error)
}

type chatService struct {
	dispatcher *realtime.Dispatcher
	repo       repository.MessageRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewChatService creates a websocket chat service instance.
func NewChatService(dispatcher *realtime.Dispatcher, repo repository.MessageRepository, validate *validator.Validate, logger zerolog.Logger) ChatService {
	return &chatService{
		dispatcher: dispatcher,
		repo:       repo,
		validator:  validate,
		logger:     logger.With().Str("component", "chat_service").Logger(),
	}
}

func (s *chatService) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &chatClient{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan realtime.Envelope, chatSendBufferSize),
		closed:  make(chan struct{}),
		service: s,
		userID:  opts.UserID,
		baseCtx: baseCtx,
	}

	s.dispatcher.Registry().Register(client, opts.UserID)
	observability.RealtimeConnections().Inc()

	go client.writer()
	client.reader()

	observability.RealtimeConnections().Dec()
}

// History returns one page of a conversation thread, oldest first. Fetching
// a thread counts as opening it: messages addressed to the caller flip from
// sent to read.
func (s *chatService) History(ctx context.Context, userID string, query dto.ChatHistoryQuery) ([]dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	threadID := realtime.ThreadKey(userID, query.With)

	if err := s.repo.MarkThreadRead(ctx, threadID, userID); err != nil {
		return nil, err
	}

	before := time.Time{}
	if query.Before != nil {
		before = *query.Before
	}

	messages, err := s.repo.ListByThread(ctx, threadID, before, query.Limit)
	if err != nil {
		return nil, err
	}

	return dto.NewChatMessageResponseSlice(messages), nil
}

// Threads summarises every conversation the user takes part in: the
// counterpart, the newest message and the unread count.
func (s *chatService) Threads(ctx context.Context, userID string) ([]dto.ThreadSummaryResponse, error) {
	latest, err := s.repo.ListThreads(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ThreadSummaryResponse, 0, len(latest))
	for _, message := range latest {
		counterpart := message.SenderID
		if counterpart == userID {
			counterpart = message.RecipientID
		}

		unread, err := s.repo.CountUnreadInThread(ctx, message.ThreadID, userID)
		if err != nil {
			return nil, err
		}

		out = append(out, dto.ThreadSummaryResponse{
			ThreadID:      message.ThreadID,
			CounterpartID: counterpart,
			LastMessage:   dto.NewChatMessageResponse(message),
			UnreadCount:   unread,
		})
	}
	return out, nil
}

// chatClient adapts one websocket connection to the realtime.Conn contract.
// Pushes go through a buffered send channel drained by the writer pump, so a
// slow consumer drops events instead of blocking the dispatcher.
type chatClient struct {
	id      string
	conn    *websocket.Conn
	send    chan realtime.Envelope
	closed  chan struct{}
	once    sync.Once
	service *chatService
	userID  string
	baseCtx context.Context
}

func (c *chatClient) ID() string {
	return c.id
}

func (c *chatClient) Push(event string, data any) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.send <- realtime.Envelope{Event: event, Data: data}:
		return true
	default:
		return false
	}
}

func (c *chatClient) reader() {
	defer c.close()

	connCtx := c.baseCtx

	for {
		var frame dto.ChatInboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.service.logger.Debug().Err(err).Str("user_id", c.userID).Msg("chat read loop ended")
			return
		}

		if err := c.service.validator.Struct(frame); err != nil {
			c.Push(realtime.EventMessageError, realtime.ErrorPayload{Error: err.Error(), Retryable: false})
			continue
		}

		switch frame.Kind {
		case "message":
			if frame.Message == nil {
				c.Push(realtime.EventMessageError, realtime.ErrorPayload{Error: "message variant missing", Retryable: false})
				continue
			}
			if _, err := c.service.dispatcher.SendMessage(connCtx, c, c.userID, *frame.Message); err != nil {
				c.service.logger.Warn().Err(err).Str("user_id", c.userID).Msg("failed to dispatch chat message")
			}
		case "typing":
			if frame.Typing == nil {
				continue
			}
			if err := c.service.dispatcher.Typing(connCtx, c.userID, *frame.Typing); err != nil {
				c.service.logger.Debug().Err(err).Str("user_id", c.userID).Msg("dropped invalid typing indicator")
			}
		}
	}
}

func (c *chatClient) writer() {
	defer c.close()

	for {
		select {
		case envelope, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(envelope); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.dispatcher.Registry().Unregister(c.id)
		_ = c.conn.Close()
	})
}
