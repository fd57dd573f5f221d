// Package enveloprv1 holds the wire messages and service descriptor of the
// envelopr.v1.Files gRPC API. Messages travel as protobuf (see files.proto);
// the JSON tags are used by the HTTP gateway.
package enveloprv1

import "time"

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Session is a bearer token and its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// File is a file record. Listings and write replies leave Content empty;
// SharedWith is only filled by GetFile; anonymous reads leave OwnerID empty.
type File struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id,omitempty"`
	Name       string    `json:"name"`
	Content    string    `json:"content,omitempty"`
	IsPublic   bool      `json:"is_public"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	SharedWith []User    `json:"shared_with,omitempty"`
}

// Sort keys accepted by ListFilesRequest.SortBy.
const (
	SortByCreated = "created"
	SortByName    = "name"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct{}

// AuthResponse is returned by Register, Login and RefreshToken.
type AuthResponse struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

// ListFilesRequest selects the order of a listing. The zero value lists
// newest first.
type ListFilesRequest struct {
	SortBy    string `json:"sort_by,omitempty"`
	Ascending bool   `json:"ascending,omitempty"`
}

type ListFilesResponse struct {
	Files []File `json:"files"`
}

// FileRequest addresses a single file by id.
type FileRequest struct {
	ID string `json:"id"`
}

type FileResponse struct {
	File File `json:"file"`
}

type CreateFileRequest struct {
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
}

type RenameFileRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UpdateFileContentRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ShareRequest names the user to grant or revoke access for.
type ShareRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type UsersResponse struct {
	Users []User `json:"users"`
}
