package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"simple-chat/internal/apperr"
	"simple-chat/internal/metrics"
)

const maxMessageLen = 4096

// UserDirectory is the slice of the user store the chat use cases need.
type UserDirectory interface {
	IsValid(id int) bool
	AddRoom(userID, roomID int) error
	RemoveRoom(userID, roomID int) error
	GetNickname(id int) (string, error)
}

// Service pairs the cross-store steps that must happen together. It narrows
// the window for half-applied updates by compensating on failure, but it
// does not lock across stores: a concurrent request can still observe the
// state between two steps.
type Service struct {
	rooms    *RoomStore
	messages *MessageStore
	users    UserDirectory
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewService(
	rooms *RoomStore,
	messages *MessageStore,
	users UserDirectory,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) *Service {
	return &Service{
		rooms:    rooms,
		messages: messages,
		users:    users,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("simple-chat/chat"),
		now:      time.Now,
	}
}

func (s *Service) ListRooms(ctx context.Context) []RoomSummary {
	rooms := s.rooms.GetAll()

	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomSummary{
			ID:        r.ID,
			Name:      r.Name,
			UserCount: len(r.Users),
		})
	}
	return out
}

func (s *Service) Greeting(ctx context.Context, userID int) (string, error) {
	nick, err := s.users.GetNickname(userID)
	if err != nil {
		return "", err
	}
	return "Hi " + nick + "!", nil
}

// CreateRoom creates a room and makes its creator the first member.
func (s *Service) CreateRoom(ctx context.Context, userID int, name string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "chat.CreateRoom")
	defer span.End()

	roomID, err := s.rooms.Create(strings.TrimSpace(name), userID)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("create room: %w", err)
	}
	span.SetAttributes(attribute.Int("room.id", roomID), attribute.Int("user.id", userID))

	if err := s.JoinRoom(ctx, userID, roomID); err != nil {
		s.logger.Warnw("creator could not join new room, removing it", "room_id", roomID, "user_id", userID, "error", err)
		_ = s.rooms.DeleteRoom(roomID)
		return 0, err
	}

	s.metrics.RoomsCreated.Inc()
	s.logger.Infow("room created", "room_id", roomID, "user_id", userID)

	return roomID, nil
}

// JoinRoom updates the room's member list and the user's room list.
func (s *Service) JoinRoom(ctx context.Context, userID, roomID int) error {
	if err := s.rooms.AddUser(roomID, userID); err != nil {
		return fmt.Errorf("join room: %w", err)
	}

	if err := s.users.AddRoom(userID, roomID); err != nil {
		s.logger.Warnw("rolling back room membership", "room_id", roomID, "user_id", userID, "error", err)
		_ = s.rooms.RemoveUser(roomID, userID)
		return fmt.Errorf("join room: %w", err)
	}

	return nil
}

func (s *Service) LeaveRoom(ctx context.Context, userID, roomID int) error {
	if err := s.rooms.RemoveUser(roomID, userID); err != nil {
		return fmt.Errorf("leave room: %w", err)
	}
	if err := s.users.RemoveRoom(userID, roomID); err != nil {
		return fmt.Errorf("leave room: %w", err)
	}
	return nil
}

// PostMessage stores a message and appends it to its room. If the append
// fails the stored message is deleted again so no orphan is left behind.
func (s *Service) PostMessage(ctx context.Context, userID, roomID int, content string) (*PostMessageResponse, error) {
	_, span := s.tracer.Start(ctx, "chat.PostMessage", trace.WithAttributes(
		attribute.Int("room.id", roomID),
		attribute.Int("user.id", userID),
	))
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return nil, apperr.Invalid("message must not be empty")
	}
	if len(content) > maxMessageLen {
		return nil, apperr.Invalid("message is too long")
	}

	createdAt := s.now()
	msgID, err := s.messages.Create(content, roomID, createdAt, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("post message: %w", err)
	}

	if err := s.rooms.AddMessage(roomID, msgID); err != nil {
		span.RecordError(err)
		s.logger.Warnw("rolling back orphaned message", "message_id", msgID, "room_id", roomID, "error", err)
		s.messages.Delete(msgID)
		return nil, fmt.Errorf("post message: %w", err)
	}

	from, err := s.users.GetNickname(userID)
	if err != nil {
		return nil, err
	}

	s.metrics.MessagesPosted.Inc()

	return &PostMessageResponse{
		From:      from,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// DeleteRoom removes a room and everything hanging off it. Only the user
// who created the room may do this.
func (s *Service) DeleteRoom(ctx context.Context, userID, roomID int) error {
	_, span := s.tracer.Start(ctx, "chat.DeleteRoom", trace.WithAttributes(
		attribute.Int("room.id", roomID),
		attribute.Int("user.id", userID),
	))
	defer span.End()

	createdBy, err := s.rooms.GetCreatedBy(roomID)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if createdBy != userID {
		return apperr.Forbidden("only the creator may delete a room")
	}

	if err := s.rooms.DeleteRoom(roomID); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	s.metrics.RoomsDeleted.Inc()
	s.logger.Infow("room deleted", "room_id", roomID, "user_id", userID)

	return nil
}

// Room builds the page model for a room. Messages are sorted by creation
// time here; the store only guarantees append order.
func (s *Service) Room(ctx context.Context, roomID int) (*RoomView, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	view := &RoomView{
		ID:        room.ID,
		Name:      room.Name,
		CreatedBy: room.CreatedBy,
		Users:     make([]string, 0, len(room.Users)),
		Messages:  make([]MessageView, 0, len(room.Messages)),
	}

	for _, userID := range room.Users {
		nick, err := s.users.GetNickname(userID)
		if err != nil {
			return nil, err
		}
		view.Users = append(view.Users, nick)
	}

	for _, msgID := range room.Messages {
		msg, err := s.messages.Get(msgID)
		if err != nil {
			// deleted on its own; the room keeps the stale id
			continue
		}
		from, err := s.users.GetNickname(msg.From)
		if err != nil {
			return nil, err
		}
		view.Messages = append(view.Messages, MessageView{
			ID:        msg.ID,
			From:      from,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	sort.SliceStable(view.Messages, func(i, j int) bool {
		return view.Messages[i].CreatedAt.Before(view.Messages[j].CreatedAt)
	})

	return view, nil
}
