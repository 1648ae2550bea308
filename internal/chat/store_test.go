package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simple-chat/internal/apperr"
	"simple-chat/internal/storage"
	"simple-chat/internal/user"
)

type stores struct {
	users    *user.Store
	rooms    *RoomStore
	messages *MessageStore
}

func newStores(t *testing.T) stores {
	t.Helper()

	users := user.NewStore(storage.NewMemory[user.User]())
	rooms := NewRoomStore(storage.NewMemory[Room](), users)
	messages := NewMessageStore(storage.NewMemory[Message](), rooms, users)
	users.SetRooms(rooms)
	rooms.SetMessages(messages)

	return stores{users: users, rooms: rooms, messages: messages}
}

func TestRoomCreate(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")

	first, err := s.rooms.Create("general", alice)
	require.NoError(t, err)
	second, err := s.rooms.Create("random", alice)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, first+1, second)

	room, err := s.rooms.Get(first)
	require.NoError(t, err)
	assert.Equal(t, "general", room.Name)
	assert.Equal(t, alice, room.CreatedBy)
	assert.Empty(t, room.Users)
	assert.Empty(t, room.Messages)
}

func TestRoomCreateUnknownCreator(t *testing.T) {
	s := newStores(t)

	_, err := s.rooms.Create("general", 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, s.rooms.Len())
}

func TestRoomCreatePlaceholderName(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")

	id, err := s.rooms.Create("", alice)
	require.NoError(t, err)

	name, err := s.rooms.GetName(id)
	require.NoError(t, err)
	assert.Contains(t, name, "unknownRoom")
}

func TestRoomAddUserOnce(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	bob := s.users.Create(time.Time{}, "bob")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)

	require.NoError(t, s.rooms.AddUser(roomID, alice))
	require.NoError(t, s.rooms.AddUser(roomID, bob))
	require.NoError(t, s.rooms.AddUser(roomID, alice))

	users, err := s.rooms.GetUsers(roomID)
	require.NoError(t, err)
	assert.Equal(t, []int{bob, alice}, users)

	// the user's own list is left alone
	rooms, err := s.users.GetRooms(alice)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestRoomAddUserValidation(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)

	assert.ErrorIs(t, s.rooms.AddUser(99, alice), apperr.ErrNotFound)
	assert.ErrorIs(t, s.rooms.AddUser(roomID, 99), apperr.ErrNotFound)

	users, err := s.rooms.GetUsers(roomID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRoomAddMessageRequiresMessage(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)

	assert.ErrorIs(t, s.rooms.AddMessage(roomID, 7), apperr.ErrNotFound)

	msgs, err := s.rooms.GetMessages(roomID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRoomGetReturnsCopy(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)
	require.NoError(t, s.rooms.AddUser(roomID, alice))

	room, err := s.rooms.Get(roomID)
	require.NoError(t, err)
	room.Users[0] = 1000

	users, err := s.rooms.GetUsers(roomID)
	require.NoError(t, err)
	assert.Equal(t, []int{alice}, users)
}

func TestRoomSetName(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)

	require.NoError(t, s.rooms.SetName(roomID, "lobby"))
	name, err := s.rooms.GetName(roomID)
	require.NoError(t, err)
	assert.Equal(t, "lobby", name)

	assert.ErrorIs(t, s.rooms.SetName(99, "x"), apperr.ErrNotFound)
}

func TestDeleteRoomCascades(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	bob := s.users.Create(time.Time{}, "bob")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)
	other, err := s.rooms.Create("other", alice)
	require.NoError(t, err)

	for _, u := range []int{alice, bob} {
		require.NoError(t, s.rooms.AddUser(roomID, u))
		require.NoError(t, s.users.AddRoom(u, roomID))
	}
	require.NoError(t, s.users.AddRoom(alice, other))

	var msgIDs []int
	for _, u := range []int{alice, bob} {
		id, err := s.messages.Create("hi", roomID, time.Time{}, u)
		require.NoError(t, err)
		require.NoError(t, s.rooms.AddMessage(roomID, id))
		msgIDs = append(msgIDs, id)
	}

	require.NoError(t, s.rooms.DeleteRoom(roomID))

	assert.False(t, s.rooms.IsValid(roomID))
	for _, id := range msgIDs {
		assert.False(t, s.messages.IsValid(id))
	}
	aliceRooms, err := s.users.GetRooms(alice)
	require.NoError(t, err)
	assert.Equal(t, []int{other}, aliceRooms)
	bobRooms, err := s.users.GetRooms(bob)
	require.NoError(t, err)
	assert.Empty(t, bobRooms)

	assert.ErrorIs(t, s.rooms.DeleteRoom(roomID), apperr.ErrNotFound)

	// ids are not reused after a delete
	next, err := s.rooms.Create("again", alice)
	require.NoError(t, err)
	assert.Equal(t, other+1, next)
}

func TestMessageRoundTrip(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	id, err := s.messages.Create("hello", roomID, at, alice)
	require.NoError(t, err)

	msg, err := s.messages.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, alice, msg.From)
	assert.Equal(t, roomID, msg.InRoom)
	assert.True(t, at.Equal(msg.CreatedAt))

	// creating a message does not append it to the room
	msgs, err := s.rooms.GetMessages(roomID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMessageCreateValidation(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)

	_, err = s.messages.Create("hello", 99, time.Time{}, alice)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.messages.Create("hello", roomID, time.Time{}, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, s.messages.Len())
}

func TestMessageDeleteMissingIsNoop(t *testing.T) {
	s := newStores(t)
	alice := s.users.Create(time.Time{}, "alice")
	roomID, err := s.rooms.Create("general", alice)
	require.NoError(t, err)

	var ids []int
	for _, content := range []string{"one", "two"} {
		id, err := s.messages.Create(content, roomID, time.Time{}, alice)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, 2, s.messages.Len())

	assert.NotPanics(t, func() { s.messages.Delete(12) })

	assert.Equal(t, 2, s.messages.Len())
	for _, id := range ids {
		assert.True(t, s.messages.IsValid(id))
	}
	_, err = s.messages.Get(12)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.messages.Assert(12), apperr.ErrNotFound)
}
