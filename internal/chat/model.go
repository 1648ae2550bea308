package chat

import "time"

type Room struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Users     []int  `json:"users"`
	Messages  []int  `json:"messages"`
	CreatedBy int    `json:"createdBy"`
}

type Message struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	From    int    `json:"from"`
	// To is reserved for @-mentions and is always empty for now.
	To        []int     `json:"to"`
	InRoom    int       `json:"inRoom"`
	CreatedAt time.Time `json:"createdAt"`
}

// ---------------------------------------------
// API & view models
// ---------------------------------------------

type RoomSummary struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
}

type MessageView struct {
	ID        int       `json:"id"`
	From      string    `json:"from"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoomView struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	CreatedBy int           `json:"createdBy"`
	Users     []string      `json:"users"`
	Messages  []MessageView `json:"messages"`
}

type HomeResponse struct {
	Greeting string        `json:"greeting"`
	Rooms    []RoomSummary `json:"rooms"`
}

type CreateRoomResponse struct {
	ID int `json:"id"`
}

type PostMessageResponse struct {
	From      string    `json:"from"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type indexPage struct {
	Title    string
	Greeting string
	Rooms    []RoomSummary
}

type roomPage struct {
	Title  string
	Room   *RoomView
	UserID int
}
