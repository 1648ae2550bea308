package user

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"simple-chat/internal/apperr"
	"simple-chat/internal/storage"
)

const placeholderPrefix = "unknownPerson"

// RoomLookup is what the user store needs to know about rooms. It is wired
// after construction because the room store depends on this store too.
type RoomLookup interface {
	IsValid(id int) bool
}

type Store struct {
	users storage.Table[User]
	rooms RoomLookup

	// nickname checks and the writes they guard must not interleave
	mu sync.Mutex

	now func() time.Time
}

func NewStore(users storage.Table[User]) *Store {
	return &Store{
		users: users,
		now:   time.Now,
	}
}

func (s *Store) SetRooms(rooms RoomLookup) {
	s.rooms = rooms
}

// Create inserts a user and returns its id. If a user already holds the
// requested nickname, that user's id is returned and nothing is written.
// A zero createdOn means now; an empty nickname gets a placeholder.
func (s *Store) Create(createdOn time.Time, nickname string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nickname != "" {
		if existing, ok := s.findByNickname(nickname); ok {
			return existing.ID
		}
	}

	if createdOn.IsZero() {
		createdOn = s.now()
	}
	if nickname == "" {
		nickname = s.placeholder(createdOn)
	}

	return s.users.Insert(func(id int) User {
		return User{
			ID:           id,
			Nickname:     nickname,
			Rooms:        []int{},
			CreatedOn:    createdOn,
			LastAccessed: createdOn,
		}
	})
}

func (s *Store) placeholder(at time.Time) string {
	base := fmt.Sprintf("%s%d", placeholderPrefix, at.UnixMilli())
	candidate := base
	for n := 2; ; n++ {
		if _, taken := s.findByNickname(candidate); !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *Store) Get(id int) (User, error) {
	u, ok := s.users.Get(id)
	if !ok {
		return User{}, apperr.NotFound("user", id)
	}
	u.Rooms = slices.Clone(u.Rooms)
	return u, nil
}

func (s *Store) Assert(id int) error {
	if !s.users.Has(id) {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (s *Store) IsValid(id int) bool {
	return s.users.Has(id)
}

// SetNickname fails with a conflict if any other user holds nickname.
func (s *Store) SetNickname(id int, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Assert(id); err != nil {
		return err
	}
	if holder, ok := s.findByNickname(nickname); ok && holder.ID != id {
		return apperr.Conflict("user with nickname exists")
	}

	s.users.Update(id, func(u *User) { u.Nickname = nickname })
	return nil
}

func (s *Store) GetNickname(id int) (string, error) {
	u, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return u.Nickname, nil
}

func (s *Store) GetLastAccessed(id int) (time.Time, error) {
	u, err := s.Get(id)
	if err != nil {
		return time.Time{}, err
	}
	return u.LastAccessed, nil
}

// SetLastAccessed records an access; a zero at means now.
func (s *Store) SetLastAccessed(id int, at time.Time) error {
	if at.IsZero() {
		at = s.now()
	}
	if !s.users.Update(id, func(u *User) { u.LastAccessed = at }) {
		return apperr.NotFound("user", id)
	}
	return nil
}

// AddRoom records that the user is in roomID. The room must exist.
func (s *Store) AddRoom(id, roomID int) error {
	if err := s.Assert(id); err != nil {
		return err
	}
	if s.rooms == nil || !s.rooms.IsValid(roomID) {
		return apperr.NotFound("room", roomID)
	}

	s.users.Update(id, func(u *User) {
		u.Rooms = append(without(u.Rooms, roomID), roomID)
	})
	return nil
}

func (s *Store) RemoveRoom(id, roomID int) error {
	if !s.users.Update(id, func(u *User) { u.Rooms = without(u.Rooms, roomID) }) {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (s *Store) GetRooms(id int) ([]int, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return u.Rooms, nil
}

func (s *Store) GetAll() []User {
	all := s.users.All()
	for i := range all {
		all[i].Rooms = slices.Clone(all[i].Rooms)
	}
	return all
}

func (s *Store) GetUserByNickname(nickname string) (User, bool) {
	u, ok := s.findByNickname(nickname)
	if ok {
		u.Rooms = slices.Clone(u.Rooms)
	}
	return u, ok
}

func (s *Store) findByNickname(nickname string) (User, bool) {
	for _, u := range s.users.All() {
		if u.Nickname == nickname {
			return u, true
		}
	}
	return User{}, false
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
