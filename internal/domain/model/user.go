package model

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const guestPrefix = "guest_"

// User is the caller's local identity: either a persisted named account or an
// ephemeral guest minted fresh per browser session.
type User struct {
	Username string `json:"username"`
	Guest    bool   `json:"guest"`
}

func NewNamedUser(username string) User {
	return User{Username: username}
}

// NewGuestUser mints a fresh guest identity. Guests never read or write
// remote chat history.
func NewGuestUser() User {
	return User{Username: guestPrefix + strings.ToLower(ulid.Make().String()), Guest: true}
}

func (u User) IsGuest() bool {
	return u.Guest || u.Username == "" || strings.HasPrefix(u.Username, guestPrefix)
}
