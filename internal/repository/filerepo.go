package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vx6Fid/envelopr/internal/model"
)

// MutateFunc inspects the locked current state of a file and the caller's
// grant on it, and changes it in place. Returning an error aborts the change.
type MutateFunc func(f *model.File, granted bool) error

// GuardFunc decides whether a destructive operation may proceed.
type GuardFunc func(f *model.File, granted bool) error

// FileRepository stores files. Every method touches a single file aggregate.
type FileRepository interface {
	// Create inserts a new file.
	Create(ctx context.Context, f *model.File) error

	// Get returns the file and whether userID holds a grant on it.
	Get(ctx context.Context, id, userID uuid.UUID) (*model.File, bool, error)

	// ListOwned returns metadata (no content) of files owned by ownerID.
	ListOwned(ctx context.Context, ownerID uuid.UUID, order model.ListOrder) ([]model.File, error)

	// ListGranted returns metadata of files userID holds a grant on.
	ListGranted(ctx context.Context, userID uuid.UUID, order model.ListOrder) ([]model.File, error)

	// Mutate locks the file, applies fn and persists name, content and
	// visibility atomically. Concurrent mutations of one file are applied in
	// lock-acquisition (arrival) order.
	Mutate(ctx context.Context, id, userID uuid.UUID, fn MutateFunc) (*model.File, error)

	// Delete removes the file and its grants atomically if guard allows.
	Delete(ctx context.Context, id, userID uuid.UUID, guard GuardFunc) error
}

// ShareRepository maintains the file <-> user grant relation.
type ShareRepository interface {
	// Grant adds (fileID, userID) after guard approves against the locked file.
	// Granting an existing pair is a no-op.
	Grant(ctx context.Context, fileID, actorID, userID uuid.UUID, guard GuardFunc) error

	// Revoke removes (fileID, userID) after guard approves. Removing a missing pair is a no-op.
	Revoke(ctx context.Context, fileID, actorID, userID uuid.UUID, guard GuardFunc) error

	// Grantees lists users holding a grant on fileID ordered by username.
	Grantees(ctx context.Context, fileID uuid.UUID) ([]model.User, error)
}
