package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
)

func seedUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.Must(uuid.NewV4()), Username: name}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedFile(t *testing.T, s *Store, owner uuid.UUID, name string) *model.File {
	t.Helper()
	f := &model.File{ID: uuid.Must(uuid.NewV4()), OwnerID: owner, Name: name}
	require.NoError(t, s.Files().Create(context.Background(), f))
	return f
}

func TestUsers_CreateAndLookup(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	alice := seedUser(t, s, "alice")

	err := s.Users().Create(ctx, &model.User{ID: uuid.Must(uuid.NewV4()), Username: "alice"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	got, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	_, err = s.Users().GetByID(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFiles_CreateRequiresOwner(t *testing.T) {
	t.Parallel()
	s := New()
	err := s.Files().Create(context.Background(), &model.File{ID: uuid.Must(uuid.NewV4()), OwnerID: uuid.Must(uuid.NewV4()), Name: "x"})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFiles_MutateRejectedLeavesFileUntouched(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	f := seedFile(t, s, alice.ID, "a.txt")

	_, err := s.Files().Mutate(ctx, f.ID, alice.ID, func(cur *model.File, _ bool) error {
		cur.Content = "partial"
		return errors.New("abort")
	})
	require.Error(t, err)

	got, _, err := s.Files().Get(ctx, f.ID, alice.ID)
	require.NoError(t, err)
	require.Empty(t, got.Content)
}

func TestFiles_ConcurrentMutationsAreSerialized(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	f := seedFile(t, s, alice.ID, "counter")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Files().Mutate(ctx, f.ID, alice.ID, func(cur *model.File, _ bool) error {
				cur.Content += "x"
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _, err := s.Files().Get(ctx, f.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Content, 50)
}

func TestFiles_ListOrdering(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	alice := seedUser(t, s, "alice")
	seedFile(t, s, alice.ID, "b.txt")
	seedFile(t, s, alice.ID, "c.txt")
	seedFile(t, s, alice.ID, "a.txt")

	byName, err := s.Files().ListOwned(ctx, alice.ID, model.ListOrder{By: model.SortByName})
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, names(byName))

	newest, err := s.Files().ListOwned(ctx, alice.ID, model.DefaultListOrder)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "c.txt", "b.txt"}, names(newest))
}

func TestShares_GrantRevokeDeleteCascade(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	f := seedFile(t, s, alice.ID, "notes.txt")
	ok := func(*model.File, bool) error { return nil }

	require.NoError(t, s.Shares().Grant(ctx, f.ID, alice.ID, bob.ID, ok))
	require.NoError(t, s.Shares().Grant(ctx, f.ID, alice.ID, bob.ID, ok))

	_, granted, err := s.Files().Get(ctx, f.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, granted)

	shared, err := s.Files().ListGranted(ctx, bob.ID, model.DefaultListOrder)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	require.Empty(t, shared[0].Content)

	require.ErrorIs(t, s.Shares().Grant(ctx, f.ID, alice.ID, uuid.Must(uuid.NewV4()), ok), errs.ErrNotFound)

	require.NoError(t, s.Files().Delete(ctx, f.ID, alice.ID, ok))
	require.Empty(t, s.grants)
	require.ErrorIs(t, s.Files().Delete(ctx, f.ID, alice.ID, ok), errs.ErrNotFound)
}

func TestContextCancelled(t *testing.T) {
	t.Parallel()
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Users().GetByUsername(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}

func names(fs []model.File) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Name)
	}
	return out
}
