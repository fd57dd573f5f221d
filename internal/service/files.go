package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/vx6Fid/envelopr/internal/access"
	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
	"github.com/vx6Fid/envelopr/internal/repository"
)

// FileService defines file lifecycle, sharing and visibility operations.
// Permissions are evaluated on every call against the current stored state.
type FileService interface {
	Create(ctx context.Context, a model.Actor, name, content string) (*model.File, error)
	Rename(ctx context.Context, a model.Actor, id uuid.UUID, name string) (*model.File, error)
	UpdateContent(ctx context.Context, a model.Actor, id uuid.UUID, content string) (*model.File, error)
	Delete(ctx context.Context, a model.Actor, id uuid.UUID) error
	// Get returns the file with content and the users it is shared with.
	Get(ctx context.Context, a model.Actor, id uuid.UUID) (*model.File, []model.User, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*model.File, error)
	ListOwned(ctx context.Context, a model.Actor, order model.ListOrder) ([]model.File, error)
	ListShared(ctx context.Context, a model.Actor, order model.ListOrder) ([]model.File, error)

	Share(ctx context.Context, a model.Actor, id uuid.UUID, username string) error
	Unshare(ctx context.Context, a model.Actor, id uuid.UUID, username string) error
	ListSharedUsers(ctx context.Context, a model.Actor, id uuid.UUID) ([]model.User, error)
	MakePublic(ctx context.Context, a model.Actor, id uuid.UUID) (*model.File, error)
	MakePrivate(ctx context.Context, a model.Actor, id uuid.UUID) (*model.File, error)
}

type FileServiceImpl struct {
	users  repository.UserRepository
	files  repository.FileRepository
	shares repository.ShareRepository
}

// NewFileService constructs FileService over the given repositories.
func NewFileService(users repository.UserRepository, files repository.FileRepository, shares repository.ShareRepository) *FileServiceImpl {
	return &FileServiceImpl{users: users, files: files, shares: shares}
}

// Create stores a new private file owned by the actor.
func (s *FileServiceImpl) Create(ctx context.Context, a model.Actor, name, content string) (*model.File, error) {
	if a.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	name, err := normalizeFileName(name)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	f := &model.File{ID: id, OwnerID: a.UserID, Name: name, Content: content}
	if err := s.files.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Rename changes the file name. Owner and granted users may rename.
func (s *FileServiceImpl) Rename(ctx context.Context, a model.Actor, id uuid.UUID, name string) (*model.File, error) {
	if a.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	name, err := normalizeFileName(name)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, a, id, access.Edit, func(f *model.File) { f.Name = name })
}

// UpdateContent replaces the whole content. Writes to one file are applied
// in arrival order; repeating a call with the same content is harmless.
func (s *FileServiceImpl) UpdateContent(ctx context.Context, a model.Actor, id uuid.UUID, content string) (*model.File, error) {
	if a.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	return s.mutate(ctx, a, id, access.Edit, func(f *model.File) { f.Content = content })
}

// MakePublic lets anyone read the file.
func (s *FileServiceImpl) MakePublic(ctx context.Context, a model.Actor, id uuid.UUID) (*model.File, error) {
	return s.setPublic(ctx, a, id, true)
}

// MakePrivate reverts MakePublic.
func (s *FileServiceImpl) MakePrivate(ctx context.Context, a model.Actor, id uuid.UUID) (*model.File, error) {
	return s.setPublic(ctx, a, id, false)
}

func (s *FileServiceImpl) setPublic(ctx context.Context, a model.Actor, id uuid.UUID, public bool) (*model.File, error) {
	if a.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	return s.mutate(ctx, a, id, access.Publish, func(f *model.File) { f.IsPublic = public })
}

// mutate re-checks op against the locked row before applying change.
func (s *FileServiceImpl) mutate(ctx context.Context, a model.Actor, id uuid.UUID, op access.Op, change func(*model.File)) (*model.File, error) {
	return s.files.Mutate(ctx, id, a.UserID, func(f *model.File, granted bool) error {
		if err := access.Check(a, access.TargetOf(f, granted), op); err != nil {
			return err
		}
		change(f)
		return nil
	})
}

// Delete removes the file and its grants. A second delete reports ErrNotFound.
func (s *FileServiceImpl) Delete(ctx context.Context, a model.Actor, id uuid.UUID) error {
	if a.IsAnonymous() {
		return errs.ErrUnauthenticated
	}
	return s.files.Delete(ctx, id, a.UserID, guard(a, access.Delete))
}

// Get returns the file if the actor may view it; otherwise ErrNotFound.
func (s *FileServiceImpl) Get(ctx context.Context, a model.Actor, id uuid.UUID) (*model.File, []model.User, error) {
	f, err := s.view(ctx, a, id)
	if err != nil {
		return nil, nil, err
	}
	grantees, err := s.shares.Grantees(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return f, grantees, nil
}

// GetPublic returns a public file to anyone. Private and missing files are
// indistinguishable.
func (s *FileServiceImpl) GetPublic(ctx context.Context, id uuid.UUID) (*model.File, error) {
	f, _, err := s.files.Get(ctx, id, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if !f.IsPublic {
		return nil, errs.ErrNotFound
	}
	return f, nil
}

// ListOwned returns metadata of the actor's files in the requested order.
func (s *FileServiceImpl) ListOwned(ctx context.Context, a model.Actor, order model.ListOrder) ([]model.File, error) {
	if a.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	return s.files.ListOwned(ctx, a.UserID, order)
}

// ListShared returns metadata of files shared with the actor.
func (s *FileServiceImpl) ListShared(ctx context.Context, a model.Actor, order model.ListOrder) ([]model.File, error) {
	if a.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	return s.files.ListGranted(ctx, a.UserID, order)
}

// Share grants username view and edit access. Sharing twice is a no-op.
func (s *FileServiceImpl) Share(ctx context.Context, a model.Actor, id uuid.UUID, username string) error {
	target, err := s.shareTarget(ctx, a, id, username)
	if err != nil {
		return err
	}
	return s.shares.Grant(ctx, id, a.UserID, target.ID, func(f *model.File, granted bool) error {
		if err := access.Check(a, access.TargetOf(f, granted), access.Share); err != nil {
			return err
		}
		if target.ID == f.OwnerID {
			return errs.ErrSelfShare
		}
		return nil
	})
}

// Unshare removes the grant of username. Removing a missing grant is a no-op.
func (s *FileServiceImpl) Unshare(ctx context.Context, a model.Actor, id uuid.UUID, username string) error {
	target, err := s.shareTarget(ctx, a, id, username)
	if err != nil {
		return err
	}
	return s.shares.Revoke(ctx, id, a.UserID, target.ID, guard(a, access.Share))
}

// shareTarget checks the actor may manage sharing before resolving the
// username, so a non-owner learns nothing about other accounts.
func (s *FileServiceImpl) shareTarget(ctx context.Context, a model.Actor, id uuid.UUID, username string) (*model.User, error) {
	if a.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	f, granted, err := s.files.Get(ctx, id, a.UserID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(a, access.TargetOf(f, granted), access.Share); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return u, nil
}

// ListSharedUsers lists grantees ordered by username. The owner is not a grantee.
func (s *FileServiceImpl) ListSharedUsers(ctx context.Context, a model.Actor, id uuid.UUID) ([]model.User, error) {
	if _, err := s.view(ctx, a, id); err != nil {
		return nil, err
	}
	return s.shares.Grantees(ctx, id)
}

func (s *FileServiceImpl) view(ctx context.Context, a model.Actor, id uuid.UUID) (*model.File, error) {
	f, granted, err := s.files.Get(ctx, id, a.UserID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(a, access.TargetOf(f, granted), access.View); err != nil {
		return nil, err
	}
	return f, nil
}

func guard(a model.Actor, op access.Op) repository.GuardFunc {
	return func(f *model.File, granted bool) error {
		return access.Check(a, access.TargetOf(f, granted), op)
	}
}
