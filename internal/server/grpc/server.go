// Package grpcserver exposes the envelopr gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/convert"
	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
	"github.com/vx6Fid/envelopr/internal/service"
)

// Server wires services into gRPC handlers.
type Server struct {
	auth  service.AuthService
	files service.FileService
	log   *zap.Logger
}

var _ api.FilesServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, files service.FileService, log *zap.Logger) *Server {
	return &Server{auth: auth, files: files, log: log}
}

// toStatus maps domain errors to gRPC statuses. Unknown errors are logged and
// reported as a bare Internal.
func (s *Server) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "bad credentials")
	case errors.Is(err, errs.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "authentication required")
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, errs.ErrSelfShare):
		return status.Error(codes.FailedPrecondition, errs.ErrSelfShare.Error())
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	s.log.Error("request failed", zap.String("op", op), zap.Error(err))
	return status.Error(codes.Internal, "internal")
}

func remoteIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// --- Auth ---

// Register creates a new user account and logs it in.
func (s *Server) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	sess, u, err := s.auth.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus("register", err)
	}
	return convert.ToAuthResponse(sess, u), nil
}

// Login authenticates a user, throttled per client address.
func (s *Server) Login(ctx context.Context, req *api.LoginRequest) (*api.AuthResponse, error) {
	sess, u, err := s.auth.LoginWithIP(ctx, req.Username, req.Password, remoteIP(ctx))
	if err != nil {
		return nil, s.toStatus("login", err)
	}
	return convert.ToAuthResponse(sess, u), nil
}

// RefreshToken issues a fresh token for the caller.
func (s *Server) RefreshToken(ctx context.Context, _ *api.RefreshTokenRequest) (*api.AuthResponse, error) {
	a := ActorFromCtx(ctx)
	sess, err := s.auth.RefreshToken(ctx, a)
	if err != nil {
		return nil, s.toStatus("refresh token", err)
	}
	return convert.ToAuthResponse(sess, model.User{ID: a.UserID, Username: a.Username}), nil
}

// --- Files ---

// ListOwnedFiles lists metadata of the caller's files.
func (s *Server) ListOwnedFiles(ctx context.Context, req *api.ListFilesRequest) (*api.ListFilesResponse, error) {
	order, err := convert.FromListRequest(req)
	if err != nil {
		return nil, s.toStatus("list owned", err)
	}
	fs, err := s.files.ListOwned(ctx, ActorFromCtx(ctx), order)
	if err != nil {
		return nil, s.toStatus("list owned", err)
	}
	return &api.ListFilesResponse{Files: convert.ToFileMetas(fs)}, nil
}

// ListSharedFiles lists metadata of files shared with the caller.
func (s *Server) ListSharedFiles(ctx context.Context, req *api.ListFilesRequest) (*api.ListFilesResponse, error) {
	order, err := convert.FromListRequest(req)
	if err != nil {
		return nil, s.toStatus("list shared", err)
	}
	fs, err := s.files.ListShared(ctx, ActorFromCtx(ctx), order)
	if err != nil {
		return nil, s.toStatus("list shared", err)
	}
	return &api.ListFilesResponse{Files: convert.ToFileMetas(fs)}, nil
}

// GetFile returns a file with content and its grantees.
func (s *Server) GetFile(ctx context.Context, req *api.FileRequest) (*api.FileResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("get file", err)
	}
	f, grantees, err := s.files.Get(ctx, ActorFromCtx(ctx), id)
	if err != nil {
		return nil, s.toStatus("get file", err)
	}
	return &api.FileResponse{File: convert.ToFile(f, grantees)}, nil
}

// GetPublicFile returns a public file to anyone.
func (s *Server) GetPublicFile(ctx context.Context, req *api.FileRequest) (*api.FileResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("get public file", err)
	}
	f, err := s.files.GetPublic(ctx, id)
	if err != nil {
		return nil, s.toStatus("get public file", err)
	}
	return &api.FileResponse{File: convert.ToPublicFile(f)}, nil
}

// CreateFile stores a new private file and returns its metadata.
func (s *Server) CreateFile(ctx context.Context, req *api.CreateFileRequest) (*api.FileResponse, error) {
	f, err := s.files.Create(ctx, ActorFromCtx(ctx), req.Name, req.Content)
	if err != nil {
		return nil, s.toStatus("create file", err)
	}
	return &api.FileResponse{File: convert.ToFileMeta(f)}, nil
}

// RenameFile changes a file name.
func (s *Server) RenameFile(ctx context.Context, req *api.RenameFileRequest) (*api.FileResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("rename file", err)
	}
	f, err := s.files.Rename(ctx, ActorFromCtx(ctx), id, req.Name)
	if err != nil {
		return nil, s.toStatus("rename file", err)
	}
	return &api.FileResponse{File: convert.ToFileMeta(f)}, nil
}

// UpdateFileContent replaces a file's content. The reply carries metadata only.
func (s *Server) UpdateFileContent(ctx context.Context, req *api.UpdateFileContentRequest) (*api.FileResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("update content", err)
	}
	// the write must not be torn by a client giving up mid-request
	f, err := s.files.UpdateContent(context.WithoutCancel(ctx), ActorFromCtx(ctx), id, req.Content)
	if err != nil {
		return nil, s.toStatus("update content", err)
	}
	return &api.FileResponse{File: convert.ToFileMeta(f)}, nil
}

// DeleteFile removes a file and its grants.
func (s *Server) DeleteFile(ctx context.Context, req *api.FileRequest) (*api.OKResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("delete file", err)
	}
	if err := s.files.Delete(ctx, ActorFromCtx(ctx), id); err != nil {
		return nil, s.toStatus("delete file", err)
	}
	return &api.OKResponse{OK: true}, nil
}

// MakeFilePublic opens a file for anonymous reads.
func (s *Server) MakeFilePublic(ctx context.Context, req *api.FileRequest) (*api.FileResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("make public", err)
	}
	f, err := s.files.MakePublic(ctx, ActorFromCtx(ctx), id)
	if err != nil {
		return nil, s.toStatus("make public", err)
	}
	return &api.FileResponse{File: convert.ToFile(f, nil)}, nil
}

// MakeFilePrivate closes a public file.
func (s *Server) MakeFilePrivate(ctx context.Context, req *api.FileRequest) (*api.FileResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("make private", err)
	}
	f, err := s.files.MakePrivate(ctx, ActorFromCtx(ctx), id)
	if err != nil {
		return nil, s.toStatus("make private", err)
	}
	return &api.FileResponse{File: convert.ToFile(f, nil)}, nil
}

// --- Sharing ---

// ShareFile grants a user access by username.
func (s *Server) ShareFile(ctx context.Context, req *api.ShareRequest) (*api.OKResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("share", err)
	}
	if err := s.files.Share(ctx, ActorFromCtx(ctx), id, req.Username); err != nil {
		return nil, s.toStatus("share", err)
	}
	return &api.OKResponse{OK: true}, nil
}

// UnshareFile revokes a user's access by username.
func (s *Server) UnshareFile(ctx context.Context, req *api.ShareRequest) (*api.OKResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("unshare", err)
	}
	if err := s.files.Unshare(ctx, ActorFromCtx(ctx), id, req.Username); err != nil {
		return nil, s.toStatus("unshare", err)
	}
	return &api.OKResponse{OK: true}, nil
}

// ListSharedUsers lists the users a file is shared with.
func (s *Server) ListSharedUsers(ctx context.Context, req *api.FileRequest) (*api.UsersResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("list shared users", err)
	}
	us, err := s.files.ListSharedUsers(ctx, ActorFromCtx(ctx), id)
	if err != nil {
		return nil, s.toStatus("list shared users", err)
	}
	return &api.UsersResponse{Users: convert.ToUsers(us)}, nil
}
