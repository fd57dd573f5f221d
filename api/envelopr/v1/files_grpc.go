package enveloprv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "envelopr.v1.Files"

// FullMethod returns the gRPC method path for name.
func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

// FilesServer is the server API for the envelopr.v1.Files service.
type FilesServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)

	ListOwnedFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error)
	ListSharedFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error)
	GetFile(context.Context, *FileRequest) (*FileResponse, error)
	GetPublicFile(context.Context, *FileRequest) (*FileResponse, error)
	CreateFile(context.Context, *CreateFileRequest) (*FileResponse, error)
	RenameFile(context.Context, *RenameFileRequest) (*FileResponse, error)
	UpdateFileContent(context.Context, *UpdateFileContentRequest) (*FileResponse, error)
	DeleteFile(context.Context, *FileRequest) (*OKResponse, error)
	MakeFilePublic(context.Context, *FileRequest) (*FileResponse, error)
	MakeFilePrivate(context.Context, *FileRequest) (*FileResponse, error)

	ShareFile(context.Context, *ShareRequest) (*OKResponse, error)
	UnshareFile(context.Context, *ShareRequest) (*OKResponse, error)
	ListSharedUsers(context.Context, *FileRequest) (*UsersResponse, error)
}

// AnonymousMethods lists the methods callable without a session.
var AnonymousMethods = map[string]bool{
	FullMethod("Register"):      true,
	FullMethod("Login"):         true,
	FullMethod("GetPublicFile"): true,
}

func unary[Req, Resp any](name string, call func(FilesServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FilesServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FilesServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Files_ServiceDesc is the grpc.ServiceDesc for the envelopr.v1.Files service.
var Files_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FilesServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", FilesServer.Register),
		unary("Login", FilesServer.Login),
		unary("RefreshToken", FilesServer.RefreshToken),
		unary("ListOwnedFiles", FilesServer.ListOwnedFiles),
		unary("ListSharedFiles", FilesServer.ListSharedFiles),
		unary("GetFile", FilesServer.GetFile),
		unary("GetPublicFile", FilesServer.GetPublicFile),
		unary("CreateFile", FilesServer.CreateFile),
		unary("RenameFile", FilesServer.RenameFile),
		unary("UpdateFileContent", FilesServer.UpdateFileContent),
		unary("DeleteFile", FilesServer.DeleteFile),
		unary("MakeFilePublic", FilesServer.MakeFilePublic),
		unary("MakeFilePrivate", FilesServer.MakeFilePrivate),
		unary("ShareFile", FilesServer.ShareFile),
		unary("UnshareFile", FilesServer.UnshareFile),
		unary("ListSharedUsers", FilesServer.ListSharedUsers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "envelopr/v1/files.proto",
}

// RegisterFilesServer registers srv on s.
func RegisterFilesServer(s grpc.ServiceRegistrar, srv FilesServer) {
	s.RegisterService(&Files_ServiceDesc, srv)
}

// FilesClient is the client API for the envelopr.v1.Files service.
type FilesClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error)

	ListOwnedFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error)
	ListSharedFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error)
	GetFile(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error)
	GetPublicFile(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error)
	CreateFile(ctx context.Context, in *CreateFileRequest, opts ...grpc.CallOption) (*FileResponse, error)
	RenameFile(ctx context.Context, in *RenameFileRequest, opts ...grpc.CallOption) (*FileResponse, error)
	UpdateFileContent(ctx context.Context, in *UpdateFileContentRequest, opts ...grpc.CallOption) (*FileResponse, error)
	DeleteFile(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*OKResponse, error)
	MakeFilePublic(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error)
	MakeFilePrivate(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error)

	ShareFile(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*OKResponse, error)
	UnshareFile(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*OKResponse, error)
	ListSharedUsers(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*UsersResponse, error)
}

type filesClient struct {
	cc grpc.ClientConnInterface
}

// NewFilesClient returns a client for envelopr.v1.Files.
func NewFilesClient(cc grpc.ClientConnInterface) FilesClient {
	return &filesClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *filesClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "Register", in, opts)
}

func (c *filesClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "Login", in, opts)
}

func (c *filesClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "RefreshToken", in, opts)
}

func (c *filesClient) ListOwnedFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error) {
	return invoke[ListFilesResponse](ctx, c.cc, "ListOwnedFiles", in, opts)
}

func (c *filesClient) ListSharedFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error) {
	return invoke[ListFilesResponse](ctx, c.cc, "ListSharedFiles", in, opts)
}

func (c *filesClient) GetFile(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error) {
	return invoke[FileResponse](ctx, c.cc, "GetFile", in, opts)
}

func (c *filesClient) GetPublicFile(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error) {
	return invoke[FileResponse](ctx, c.cc, "GetPublicFile", in, opts)
}

func (c *filesClient) CreateFile(ctx context.Context, in *CreateFileRequest, opts ...grpc.CallOption) (*FileResponse, error) {
	return invoke[FileResponse](ctx, c.cc, "CreateFile", in, opts)
}

func (c *filesClient) RenameFile(ctx context.Context, in *RenameFileRequest, opts ...grpc.CallOption) (*FileResponse, error) {
	return invoke[FileResponse](ctx, c.cc, "RenameFile", in, opts)
}

func (c *filesClient) UpdateFileContent(ctx context.Context, in *UpdateFileContentRequest, opts ...grpc.CallOption) (*FileResponse, error) {
	return invoke[FileResponse](ctx, c.cc, "UpdateFileContent", in, opts)
}

func (c *filesClient) DeleteFile(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, "DeleteFile", in, opts)
}

func (c *filesClient) MakeFilePublic(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error) {
	return invoke[FileResponse](ctx, c.cc, "MakeFilePublic", in, opts)
}

func (c *filesClient) MakeFilePrivate(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*FileResponse, error) {
	return invoke[FileResponse](ctx, c.cc, "MakeFilePrivate", in, opts)
}

func (c *filesClient) ShareFile(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, "ShareFile", in, opts)
}

func (c *filesClient) UnshareFile(ctx context.Context, in *ShareRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, "UnshareFile", in, opts)
}

func (c *filesClient) ListSharedUsers(ctx context.Context, in *FileRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "ListSharedUsers", in, opts)
}
