package client

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/autosave"
	"github.com/vx6Fid/envelopr/internal/limiter"
	"github.com/vx6Fid/envelopr/internal/repository/memory"
	grpcserver "github.com/vx6Fid/envelopr/internal/server/grpc"
	"github.com/vx6Fid/envelopr/internal/service"
	"github.com/vx6Fid/envelopr/internal/session"
)

type harness struct {
	t   *testing.T
	lis *bufconn.Listener
}

func startServer(t *testing.T) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	st := memory.New()
	auth := service.NewAuthService(st.Users(), session.NewIssuer([]byte("k"), time.Hour), limiter.NewMemory(limiter.DefaultPolicy))
	files := service.NewFileService(st.Users(), st.Files(), st.Shares())

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcserver.RecoverUnary(log),
		grpcserver.SessionUnary(auth, api.AnonymousMethods),
	))
	api.RegisterFilesServer(gs, grpcserver.New(auth, files, log))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(func() { gs.Stop(); _ = lis.Close() })
	return &harness{t: t, lis: lis}
}

func (h *harness) dial(token string) *Client {
	h.t.Helper()
	dialer := func(context.Context, string) (net.Conn, error) { return h.lis.Dial() }
	c, err := Dial(context.Background(), Options{Addr: "bufnet", Plaintext: true, Token: token}, grpc.WithContextDialer(dialer))
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = c.Close() })
	return c
}

func (h *harness) user(name string) *Client {
	h.t.Helper()
	r, err := h.dial("").Register(context.Background(), name, "password-"+name)
	require.NoError(h.t, err)
	return h.dial(r.Session.Token)
}

func TestClient_FileLifecycle(t *testing.T) {
	t.Parallel()
	h := startServer(t)
	ctx := context.Background()
	alice := h.user("alice")
	bob := h.user("bob")

	f, err := alice.Create(ctx, "todo.txt", "milk")
	require.NoError(t, err)

	_, err = alice.Rename(ctx, f.ID, "shopping.txt")
	require.NoError(t, err)
	require.NoError(t, alice.Share(ctx, f.ID, "bob"))

	_, err = bob.Write(ctx, f.ID, "milk, eggs")
	require.NoError(t, err)

	got, err := alice.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, "shopping.txt", got.Name)
	require.Equal(t, "milk, eggs", got.Content)

	users, err := alice.SharedUsers(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "bob", users[0].Username)

	shared, err := bob.ListShared(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, shared, 1)

	_, err = h.dial("").GetPublic(ctx, f.ID)
	require.Equal(t, codes.NotFound, status.Code(err))
	_, err = alice.Publish(ctx, f.ID)
	require.NoError(t, err)
	pub, err := h.dial("").GetPublic(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, "milk, eggs", pub.Content)
	_, err = alice.Unpublish(ctx, f.ID)
	require.NoError(t, err)

	require.NoError(t, alice.Unshare(ctx, f.ID, "bob"))
	_, err = bob.Get(ctx, f.ID)
	require.Equal(t, "not found or no permission", Describe(err))

	require.NoError(t, alice.Delete(ctx, f.ID))
	owned, err := alice.ListOwned(ctx, "name", true)
	require.NoError(t, err)
	require.Empty(t, owned)
}

func TestClient_LoginAndRefresh(t *testing.T) {
	t.Parallel()
	h := startServer(t)
	ctx := context.Background()
	anon := h.dial("")

	_, err := anon.Register(ctx, "dave", "password-dave")
	require.NoError(t, err)

	_, err = anon.Login(ctx, "dave", "wrong-password")
	require.Equal(t, "wrong username or password", Describe(err))

	r, err := anon.Login(ctx, "dave", "password-dave")
	require.NoError(t, err)

	_, err = anon.Refresh(ctx)
	require.Equal(t, "login required", Describe(err))

	fresh, err := h.dial(r.Session.Token).Refresh(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.Session.Token)

	_, err = anon.Register(ctx, "dave", "password-dave")
	require.Equal(t, "username already taken", Describe(err))
}

func TestClient_CommitterDrivesAutosave(t *testing.T) {
	t.Parallel()
	h := startServer(t)
	ctx := context.Background()
	alice := h.user("alice")

	f, err := alice.Create(ctx, "draft.md", "")
	require.NoError(t, err)

	co := autosave.New("", alice.Committer(f.ID), autosave.Options{Debounce: 10 * time.Millisecond, Log: zaptest.NewLogger(t)})
	co.Edit("# ti")
	co.Edit("# title")
	require.NoError(t, co.Close(ctx))

	got, err := alice.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, "# title", got.Content)
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	require.Equal(t, "boom", Describe(errors.New("boom")))
	require.Equal(t, "not found or no permission", Describe(status.Error(codes.PermissionDenied, "forbidden")))
	require.Equal(t, "too many failed attempts, try again later", Describe(status.Error(codes.ResourceExhausted, "x")))
	require.Equal(t, "name must not be empty", Describe(status.Error(codes.InvalidArgument, "name must not be empty")))
}

func TestLoadTLS(t *testing.T) {
	t.Parallel()
	c, err := loadTLS("", true)
	require.NoError(t, err)
	require.NotNil(t, c)

	c, err = loadTLS("", false)
	require.NoError(t, err)
	require.NotNil(t, c)

	bad := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a cert"), 0o600))
	_, err = loadTLS(bad, false)
	require.Error(t, err)

	_, err = loadTLS(filepath.Join(t.TempDir(), "missing.pem"), false)
	require.Error(t, err)
}

func TestBearerCreds(t *testing.T) {
	t.Parallel()
	md, err := bearerCreds{token: "abc", secure: true}.GetRequestMetadata(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer abc", md["authorization"])
	require.True(t, bearerCreds{secure: true}.RequireTransportSecurity())
	require.False(t, bearerCreds{}.RequireTransportSecurity())
}
