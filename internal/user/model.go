package user

import "time"

type User struct {
	ID           int       `json:"id"`
	Nickname     string    `json:"nickname"`
	Rooms        []int     `json:"rooms"`
	CreatedOn    time.Time `json:"createdOn"`
	LastAccessed time.Time `json:"lastAccessed"`
}

type RenameRequest struct {
	Nickname string `json:"nickname"`
}

type MeResponse struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
	Rooms    []int  `json:"rooms"`
}
