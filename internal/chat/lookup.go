package chat

// The three stores reference each other. Each one only sees the others
// through these interfaces, and the concrete stores are wired together at
// composition time.

type UserLookup interface {
	IsValid(id int) bool
	RemoveRoom(userID, roomID int) error
}

type RoomLookup interface {
	IsValid(id int) bool
}

type MessageLookup interface {
	IsValid(id int) bool
	Delete(id int)
}
