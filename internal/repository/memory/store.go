// Package memory contains in-process implementations of repository interfaces.
// A single mutex serializes all writes, so mutations of one file are applied
// in arrival order.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
	"github.com/vx6Fid/envelopr/internal/repository"
)

type grantKey struct{ file, user uuid.UUID }

// Store holds users, files and grants in memory.
type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*model.User
	byName map[string]uuid.UUID
	files  map[uuid.UUID]*model.File
	grants map[grantKey]time.Time
	now    func() time.Time
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		users:  map[uuid.UUID]*model.User{},
		byName: map[string]uuid.UUID{},
		files:  map[uuid.UUID]*model.File{},
		grants: map[grantKey]time.Time{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Files returns the file repository view of the store.
func (s *Store) Files() *FileRepo { return &FileRepo{s: s} }

// Shares returns the share repository view of the store.
func (s *Store) Shares() *ShareRepo { return &ShareRepo{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// UserRepo implements repository.UserRepository.
type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

// Create inserts a user.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.byName[u.Username]; taken {
		return errs.ErrAlreadyExists
	}
	if _, taken := r.s.users[u.ID]; taken {
		return errs.ErrAlreadyExists
	}
	u.CreatedAt = r.s.now()
	cpy := *u
	r.s.users[u.ID] = &cpy
	r.s.byName[u.Username] = u.ID
	return nil
}

// GetByID loads a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *u
	return &cpy, nil
}

// GetByUsername loads a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *r.s.users[id]
	return &cpy, nil
}

// FileRepo implements repository.FileRepository.
type FileRepo struct{ s *Store }

var _ repository.FileRepository = (*FileRepo)(nil)

// Create inserts a file.
func (r *FileRepo) Create(ctx context.Context, f *model.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[f.OwnerID]; !ok {
		return errs.ErrNotFound
	}
	if _, ok := r.s.files[f.ID]; ok {
		return errs.ErrAlreadyExists
	}
	now := r.s.now()
	f.CreatedAt, f.UpdatedAt = now, now
	cpy := *f
	r.s.files[f.ID] = &cpy
	return nil
}

// Get returns a copy of the file and userID's grant state.
func (r *FileRepo) Get(ctx context.Context, id, userID uuid.UUID) (*model.File, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.lookup(id, userID)
}

// ListOwned returns metadata of files owned by ownerID.
func (r *FileRepo) ListOwned(ctx context.Context, ownerID uuid.UUID, order model.ListOrder) ([]model.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.File{}
	for _, f := range r.s.files {
		if f.OwnerID == ownerID {
			out = append(out, f.Meta())
		}
	}
	sortFiles(out, order)
	return out, nil
}

// ListGranted returns metadata of files shared with userID.
func (r *FileRepo) ListGranted(ctx context.Context, userID uuid.UUID, order model.ListOrder) ([]model.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.File{}
	for k := range r.s.grants {
		if k.user == userID {
			if f, ok := r.s.files[k.file]; ok {
				out = append(out, f.Meta())
			}
		}
	}
	sortFiles(out, order)
	return out, nil
}

// Mutate applies fn to a working copy and stores it only if fn succeeds.
func (r *FileRepo) Mutate(ctx context.Context, id, userID uuid.UUID, fn repository.MutateFunc) (*model.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, granted, err := r.s.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(f, granted); err != nil {
		return nil, err
	}
	cur := r.s.files[id]
	cur.Name, cur.Content, cur.IsPublic = f.Name, f.Content, f.IsPublic
	cur.UpdatedAt = r.s.now()
	out := *cur
	return &out, nil
}

// Delete removes the file and its grants.
func (r *FileRepo) Delete(ctx context.Context, id, userID uuid.UUID, guard repository.GuardFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, granted, err := r.s.lookup(id, userID)
	if err != nil {
		return err
	}
	if err := guard(f, granted); err != nil {
		return err
	}
	for k := range r.s.grants {
		if k.file == id {
			delete(r.s.grants, k)
		}
	}
	delete(r.s.files, id)
	return nil
}

// ShareRepo implements repository.ShareRepository.
type ShareRepo struct{ s *Store }

var _ repository.ShareRepository = (*ShareRepo)(nil)

// Grant adds a grant unless present.
func (r *ShareRepo) Grant(ctx context.Context, fileID, actorID, userID uuid.UUID, guard repository.GuardFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, granted, err := r.s.lookup(fileID, actorID)
	if err != nil {
		return err
	}
	if err := guard(f, granted); err != nil {
		return err
	}
	if _, ok := r.s.users[userID]; !ok {
		return errs.ErrNotFound
	}
	k := grantKey{file: fileID, user: userID}
	if _, ok := r.s.grants[k]; !ok {
		r.s.grants[k] = r.s.now()
	}
	return nil
}

// Revoke removes a grant if present.
func (r *ShareRepo) Revoke(ctx context.Context, fileID, actorID, userID uuid.UUID, guard repository.GuardFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, granted, err := r.s.lookup(fileID, actorID)
	if err != nil {
		return err
	}
	if err := guard(f, granted); err != nil {
		return err
	}
	delete(r.s.grants, grantKey{file: fileID, user: userID})
	return nil
}

// Grantees lists users holding a grant on fileID ordered by username.
func (r *ShareRepo) Grantees(ctx context.Context, fileID uuid.UUID) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.User{}
	for k := range r.s.grants {
		if k.file != fileID {
			continue
		}
		if u, ok := r.s.users[k.user]; ok {
			out = append(out, model.User{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// lookup returns a copy of the file and userID's grant state. Caller holds mu.
func (s *Store) lookup(id, userID uuid.UUID) (*model.File, bool, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, false, errs.ErrNotFound
	}
	_, granted := s.grants[grantKey{file: id, user: userID}]
	cpy := *f
	return &cpy, granted, nil
}

func sortFiles(fs []model.File, o model.ListOrder) {
	less := func(a, b model.File) int {
		var c int
		if o.By == model.SortByName {
			c = strings.Compare(a.Name, b.Name)
		} else {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		return c
	}
	sort.SliceStable(fs, func(i, j int) bool {
		if o.Desc {
			return less(fs[i], fs[j]) > 0
		}
		return less(fs[i], fs[j]) < 0
	})
}
