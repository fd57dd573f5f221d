// Package client is a typed client for the envelopr gRPC API.
package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/autosave"
)

// Options configure Dial.
type Options struct {
	Addr   string
	CACert string // PEM bundle; system roots when empty
	// SkipVerify disables certificate verification (dev only).
	SkipVerify bool
	// Plaintext dials without TLS, for servers started without a certificate.
	Plaintext bool
	Token     string
}

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil //nolint:gosec // opt-in dev flag
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// Client wraps the generated-style stub with domain-shaped calls.
type Client struct {
	conn *grpc.ClientConn
	rpc  api.FilesClient
}

// Dial connects to the server described by o.
func Dial(ctx context.Context, o Options, extra ...grpc.DialOption) (*Client, error) {
	var creds credentials.TransportCredentials
	if o.Plaintext {
		creds = insecure.NewCredentials()
	} else {
		c, err := loadTLS(o.CACert, o.SkipVerify)
		if err != nil {
			return nil, err
		}
		creds = c
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if o.Token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: o.Token, secure: !o.Plaintext}))
	}
	opts = append(opts, extra...)
	//nolint:staticcheck // DialContext is supported through 1.x; migrate when grpc.NewClient is stable
	cc, err := grpc.DialContext(ctx, o.Addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: cc, rpc: api.NewFilesClient(cc)}, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }

// --- auth ---

func (c *Client) Register(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	return c.rpc.Register(ctx, &api.RegisterRequest{Username: username, Password: password})
}

func (c *Client) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	return c.rpc.Login(ctx, &api.LoginRequest{Username: username, Password: password})
}

func (c *Client) Refresh(ctx context.Context) (*api.AuthResponse, error) {
	return c.rpc.RefreshToken(ctx, &api.RefreshTokenRequest{})
}

// --- files ---

// ListOwned lists the caller's files; sortBy is "name" or "created".
func (c *Client) ListOwned(ctx context.Context, sortBy string, asc bool) ([]api.File, error) {
	out, err := c.rpc.ListOwnedFiles(ctx, &api.ListFilesRequest{SortBy: sortBy, Ascending: asc})
	if err != nil {
		return nil, err
	}
	return out.Files, nil
}

// ListShared lists files shared with the caller.
func (c *Client) ListShared(ctx context.Context, sortBy string, asc bool) ([]api.File, error) {
	out, err := c.rpc.ListSharedFiles(ctx, &api.ListFilesRequest{SortBy: sortBy, Ascending: asc})
	if err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *Client) Get(ctx context.Context, id string) (*api.File, error) {
	return fileOf(c.rpc.GetFile(ctx, &api.FileRequest{ID: id}))
}

func (c *Client) GetPublic(ctx context.Context, id string) (*api.File, error) {
	return fileOf(c.rpc.GetPublicFile(ctx, &api.FileRequest{ID: id}))
}

func (c *Client) Create(ctx context.Context, name, content string) (*api.File, error) {
	return fileOf(c.rpc.CreateFile(ctx, &api.CreateFileRequest{Name: name, Content: content}))
}

func (c *Client) Rename(ctx context.Context, id, name string) (*api.File, error) {
	return fileOf(c.rpc.RenameFile(ctx, &api.RenameFileRequest{ID: id, Name: name}))
}

// Write replaces the whole content of a file.
func (c *Client) Write(ctx context.Context, id, content string) (*api.File, error) {
	return fileOf(c.rpc.UpdateFileContent(ctx, &api.UpdateFileContentRequest{ID: id, Content: content}))
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.rpc.DeleteFile(ctx, &api.FileRequest{ID: id})
	return err
}

func (c *Client) Publish(ctx context.Context, id string) (*api.File, error) {
	return fileOf(c.rpc.MakeFilePublic(ctx, &api.FileRequest{ID: id}))
}

func (c *Client) Unpublish(ctx context.Context, id string) (*api.File, error) {
	return fileOf(c.rpc.MakeFilePrivate(ctx, &api.FileRequest{ID: id}))
}

// --- sharing ---

func (c *Client) Share(ctx context.Context, id, username string) error {
	_, err := c.rpc.ShareFile(ctx, &api.ShareRequest{ID: id, Username: username})
	return err
}

func (c *Client) Unshare(ctx context.Context, id, username string) error {
	_, err := c.rpc.UnshareFile(ctx, &api.ShareRequest{ID: id, Username: username})
	return err
}

func (c *Client) SharedUsers(ctx context.Context, id string) ([]api.User, error) {
	out, err := c.rpc.ListSharedUsers(ctx, &api.FileRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Committer returns an autosave.CommitFunc writing to file id.
func (c *Client) Committer(id string) autosave.CommitFunc {
	return func(ctx context.Context, content string) error {
		_, err := c.Write(ctx, id, content)
		return err
	}
}

func fileOf(r *api.FileResponse, err error) (*api.File, error) {
	if err != nil {
		return nil, err
	}
	return &r.File, nil
}

// Describe renders an RPC error for people. Missing files and files the
// caller may not touch read the same.
func Describe(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return err.Error()
	}
	switch st.Code() {
	case codes.NotFound, codes.PermissionDenied:
		return "not found or no permission"
	case codes.Unauthenticated:
		if st.Message() == "bad credentials" {
			return "wrong username or password"
		}
		return "login required"
	case codes.ResourceExhausted:
		return "too many failed attempts, try again later"
	case codes.AlreadyExists:
		return "username already taken"
	case codes.Unavailable:
		return "server unavailable"
	}
	return st.Message()
}
