package user

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simple-chat/internal/apperr"
	"simple-chat/internal/storage"
)

type fakeRooms map[int]bool

func (f fakeRooms) IsValid(id int) bool { return f[id] }

func newStore(rooms ...int) *Store {
	s := NewStore(storage.NewMemory[User]())
	valid := fakeRooms{}
	for _, id := range rooms {
		valid[id] = true
	}
	s.SetRooms(valid)
	return s
}

func TestCreate(t *testing.T) {
	s := newStore()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	id := s.Create(at, "alice")
	assert.Equal(t, 1, id)

	u, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Nickname)
	assert.Empty(t, u.Rooms)
	assert.True(t, at.Equal(u.CreatedOn))
	assert.True(t, at.Equal(u.LastAccessed))
}

func TestCreateIsIdempotentByNickname(t *testing.T) {
	s := newStore()

	first := s.Create(time.Time{}, "alice")
	second := s.Create(time.Time{}, "alice")

	assert.Equal(t, first, second)
	assert.Len(t, s.GetAll(), 1)
}

func TestCreatePlaceholderNicknames(t *testing.T) {
	s := newStore()
	at := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return at }

	a := s.Create(time.Time{}, "")
	b := s.Create(time.Time{}, "")
	require.NotEqual(t, a, b)

	nickA, err := s.GetNickname(a)
	require.NoError(t, err)
	nickB, err := s.GetNickname(b)
	require.NoError(t, err)

	assert.Equal(t, "unknownPerson1700000000000", nickA)
	assert.True(t, strings.HasPrefix(nickB, "unknownPerson1700000000000-"))
	assert.NotEqual(t, nickA, nickB)
}

func TestSetNickname(t *testing.T) {
	s := newStore()
	alice := s.Create(time.Time{}, "alice")
	bob := s.Create(time.Time{}, "bob")

	err := s.SetNickname(bob, "alice")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	nick, err := s.GetNickname(bob)
	require.NoError(t, err)
	assert.Equal(t, "bob", nick)

	// keeping your own nickname is not a conflict
	require.NoError(t, s.SetNickname(alice, "alice"))

	require.NoError(t, s.SetNickname(bob, "robert"))
	u, ok := s.GetUserByNickname("robert")
	require.True(t, ok)
	assert.Equal(t, bob, u.ID)

	_, ok = s.GetUserByNickname("bob")
	assert.False(t, ok)

	assert.ErrorIs(t, s.SetNickname(99, "ghost"), apperr.ErrNotFound)
}

func TestNicknamesAreCaseSensitive(t *testing.T) {
	s := newStore()
	s.Create(time.Time{}, "alice")
	bob := s.Create(time.Time{}, "bob")

	assert.NoError(t, s.SetNickname(bob, "Alice"))
}

func TestLastAccessed(t *testing.T) {
	s := newStore()
	id := s.Create(time.Time{}, "alice")
	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetLastAccessed(id, later))
	got, err := s.GetLastAccessed(id)
	require.NoError(t, err)
	assert.True(t, later.Equal(got))

	assert.ErrorIs(t, s.SetLastAccessed(99, later), apperr.ErrNotFound)
	_, err = s.GetLastAccessed(99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddRoom(t *testing.T) {
	s := newStore(1, 2)
	id := s.Create(time.Time{}, "alice")

	require.NoError(t, s.AddRoom(id, 1))
	require.NoError(t, s.AddRoom(id, 2))
	require.NoError(t, s.AddRoom(id, 1))

	rooms, err := s.GetRooms(id)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, rooms)

	assert.ErrorIs(t, s.AddRoom(id, 3), apperr.ErrNotFound)
	assert.ErrorIs(t, s.AddRoom(99, 1), apperr.ErrNotFound)

	rooms, err = s.GetRooms(id)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, rooms)
}

func TestRemoveRoom(t *testing.T) {
	s := newStore(1, 2)
	id := s.Create(time.Time{}, "alice")
	require.NoError(t, s.AddRoom(id, 1))
	require.NoError(t, s.AddRoom(id, 2))

	require.NoError(t, s.RemoveRoom(id, 1))
	// removing something that is not there is fine
	require.NoError(t, s.RemoveRoom(id, 7))

	rooms, err := s.GetRooms(id)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rooms)

	assert.ErrorIs(t, s.RemoveRoom(99, 1), apperr.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := newStore(1)
	id := s.Create(time.Time{}, "alice")
	require.NoError(t, s.AddRoom(id, 1))

	u, err := s.Get(id)
	require.NoError(t, err)
	u.Rooms[0] = 500

	rooms, err := s.GetRooms(id)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rooms)
}

func TestAssert(t *testing.T) {
	s := newStore()
	id := s.Create(time.Time{}, "alice")

	assert.NoError(t, s.Assert(id))
	assert.True(t, s.IsValid(id))
	assert.ErrorIs(t, s.Assert(id+1), apperr.ErrNotFound)
	assert.False(t, s.IsValid(id+1))
}
