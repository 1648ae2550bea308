package chat

import (
	"slices"
	"time"

	"simple-chat/internal/apperr"
	"simple-chat/internal/storage"
)

type MessageStore struct {
	messages storage.Table[Message]
	rooms    RoomLookup
	users    UserLookup
	now      func() time.Time
}

func NewMessageStore(messages storage.Table[Message], rooms RoomLookup, users UserLookup) *MessageStore {
	return &MessageStore{
		messages: messages,
		rooms:    rooms,
		users:    users,
		now:      time.Now,
	}
}

// Create validates the room and the author before writing anything. It
// does not append the message to the room; see RoomStore.AddMessage.
// A zero createdAt means now.
func (s *MessageStore) Create(content string, roomID int, createdAt time.Time, from int) (int, error) {
	if !s.rooms.IsValid(roomID) {
		return 0, apperr.NotFound("room", roomID)
	}
	if !s.users.IsValid(from) {
		return 0, apperr.NotFound("user", from)
	}
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	id := s.messages.Insert(func(id int) Message {
		return Message{
			ID:        id,
			Content:   content,
			From:      from,
			InRoom:    roomID,
			CreatedAt: createdAt,
		}
	})

	return id, nil
}

func (s *MessageStore) Get(id int) (Message, error) {
	msg, ok := s.messages.Get(id)
	if !ok {
		return Message{}, apperr.NotFound("message", id)
	}
	msg.To = slices.Clone(msg.To)
	return msg, nil
}

func (s *MessageStore) Assert(id int) error {
	if !s.messages.Has(id) {
		return apperr.NotFound("message", id)
	}
	return nil
}

func (s *MessageStore) IsValid(id int) bool {
	return s.messages.Has(id)
}

// Delete is a no-op for unknown ids so that cascades can revisit state
// that is already gone.
func (s *MessageStore) Delete(id int) {
	s.messages.Delete(id)
}

func (s *MessageStore) Len() int {
	return s.messages.Len()
}
