// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents an account stored on the server. The password is never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique, public handle used for sharing
	PwdHash   []byte    // Argon2id(password, Salt)
	Salt      []byte    // per-user salt
	CreatedAt time.Time
}

// Session is an issued bearer credential for a user.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Actor is the identity a request is evaluated as. The zero value is anonymous.
type Actor struct {
	UserID   uuid.UUID
	Username string
}

// Anonymous is the actor of requests without a valid session.
var Anonymous = Actor{}

// IsAnonymous reports whether the actor carries no user identity.
func (a Actor) IsAnonymous() bool { return a.UserID == uuid.Nil }

// File is a text document owned by exactly one user.
type File struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID // never changes
	Name      string
	Content   string
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Meta returns a copy of the file without content.
func (f File) Meta() File {
	f.Content = ""
	return f
}

// SortKey selects the column a file listing is ordered by.
type SortKey int

const (
	SortByCreated SortKey = iota
	SortByName
)

// ListOrder is the caller-chosen ordering of a file listing.
type ListOrder struct {
	By   SortKey
	Desc bool
}

// DefaultListOrder lists newest files first.
var DefaultListOrder = ListOrder{By: SortByCreated, Desc: true}
