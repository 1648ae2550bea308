package chat

import (
	"fmt"
	"slices"
	"time"

	"simple-chat/internal/apperr"
	"simple-chat/internal/storage"
)

type RoomStore struct {
	rooms    storage.Table[Room]
	users    UserLookup
	messages MessageLookup
	now      func() time.Time
}

func NewRoomStore(rooms storage.Table[Room], users UserLookup) *RoomStore {
	return &RoomStore{
		rooms: rooms,
		users: users,
		now:   time.Now,
	}
}

// SetMessages completes the wiring; the message store needs this store
// before it can be built.
func (s *RoomStore) SetMessages(messages MessageLookup) {
	s.messages = messages
}

// Create stores a room with no members and no messages. The creator must
// be an existing user.
func (s *RoomStore) Create(name string, createdBy int) (int, error) {
	if !s.users.IsValid(createdBy) {
		return 0, apperr.NotFound("user", createdBy)
	}
	if name == "" {
		name = fmt.Sprintf("unknownRoom%d", s.now().UnixMilli())
	}

	id := s.rooms.Insert(func(id int) Room {
		return Room{
			ID:        id,
			Name:      name,
			Users:     []int{},
			Messages:  []int{},
			CreatedBy: createdBy,
		}
	})

	return id, nil
}

func (s *RoomStore) Get(id int) (Room, error) {
	room, ok := s.rooms.Get(id)
	if !ok {
		return Room{}, apperr.NotFound("room", id)
	}
	room.Users = slices.Clone(room.Users)
	room.Messages = slices.Clone(room.Messages)
	return room, nil
}

func (s *RoomStore) Assert(id int) error {
	if !s.rooms.Has(id) {
		return apperr.NotFound("room", id)
	}
	return nil
}

func (s *RoomStore) IsValid(id int) bool {
	return s.rooms.Has(id)
}

func (s *RoomStore) SetName(id int, name string) error {
	return s.update(id, func(r *Room) { r.Name = name })
}

func (s *RoomStore) GetName(id int) (string, error) {
	room, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return room.Name, nil
}

// AddUser puts userID at the end of the member list, exactly once. It does
// not touch the user's own room list.
func (s *RoomStore) AddUser(id, userID int) error {
	if err := s.Assert(id); err != nil {
		return err
	}
	if !s.users.IsValid(userID) {
		return apperr.NotFound("user", userID)
	}

	return s.update(id, func(r *Room) {
		r.Users = append(without(r.Users, userID), userID)
	})
}

// RemoveUser drops userID from the member list only.
func (s *RoomStore) RemoveUser(id, userID int) error {
	return s.update(id, func(r *Room) { r.Users = without(r.Users, userID) })
}

func (s *RoomStore) GetUsers(id int) ([]int, error) {
	room, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return room.Users, nil
}

// AddMessage appends an existing message id. Callers are responsible for
// only appending messages whose InRoom is this room.
func (s *RoomStore) AddMessage(id, messageID int) error {
	if err := s.Assert(id); err != nil {
		return err
	}
	if s.messages == nil || !s.messages.IsValid(messageID) {
		return apperr.NotFound("message", messageID)
	}

	return s.update(id, func(r *Room) { r.Messages = append(r.Messages, messageID) })
}

// GetMessages returns message ids in append order.
func (s *RoomStore) GetMessages(id int) ([]int, error) {
	room, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return room.Messages, nil
}

func (s *RoomStore) GetCreatedBy(id int) (int, error) {
	room, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	return room.CreatedBy, nil
}

// DeleteRoom detaches every member, deletes every message and only then
// removes the room itself. Cleanup is best effort and is not rolled back.
func (s *RoomStore) DeleteRoom(id int) error {
	room, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, userID := range room.Users {
		// users are never deleted, so this only fails on a broken wiring
		_ = s.users.RemoveRoom(userID, id)
	}
	if s.messages != nil {
		for _, messageID := range room.Messages {
			s.messages.Delete(messageID)
		}
	}

	s.rooms.Delete(id)
	return nil
}

func (s *RoomStore) GetAll() []Room {
	all := s.rooms.All()
	for i := range all {
		all[i].Users = slices.Clone(all[i].Users)
		all[i].Messages = slices.Clone(all[i].Messages)
	}
	return all
}

func (s *RoomStore) Len() int {
	return s.rooms.Len()
}

func (s *RoomStore) update(id int, fn func(r *Room)) error {
	if !s.rooms.Update(id, fn) {
		return apperr.NotFound("room", id)
	}
	return nil
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
