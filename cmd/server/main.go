// Command envelopr-server starts the envelopr gRPC API and HTTP gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/config"
	"github.com/vx6Fid/envelopr/internal/limiter"
	"github.com/vx6Fid/envelopr/internal/migrate"
	"github.com/vx6Fid/envelopr/internal/repository"
	"github.com/vx6Fid/envelopr/internal/repository/memory"
	"github.com/vx6Fid/envelopr/internal/repository/postgres"
	grpcserver "github.com/vx6Fid/envelopr/internal/server/grpc"
	"github.com/vx6Fid/envelopr/internal/server/httpgw"
	"github.com/vx6Fid/envelopr/internal/service"
	"github.com/vx6Fid/envelopr/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// storage bundles the repositories of one backend.
type storage struct {
	users  repository.UserRepository
	files  repository.FileRepository
	shares repository.ShareRepository
	lim    limiter.Limiter
	ping   func(context.Context) error
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		st := memory.New()
		return &storage{
			users:  st.Users(),
			files:  st.Files(),
			shares: st.Shares(),
			lim:    limiter.NewMemory(limiter.DefaultPolicy),
			ping:   st.Ping,
			close:  func() {},
		}, nil
	}

	ver, err := migrate.Up(ctx, cfg.DSN, log)
	if err != nil {
		return nil, err
	}
	log.Info("schema ready", zap.Int64("version", ver))
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &storage{
		users:  postgres.NewUserRepo(db),
		files:  postgres.NewFileRepo(db),
		shares: postgres.NewShareRepo(db),
		lim:    limiter.NewPG(db.Pool, limiter.DefaultPolicy),
		ping:   db.Ping,
		close:  db.Close,
	}, nil
}

// storageOpener is replaced in tests.
var storageOpener = openStorage

// main loads configuration and runs the server until a signal arrives.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("grpcAddr", cfg.GRPCAddr),
		zap.String("httpAddr", cfg.HTTPAddr),
		zap.String("storage", cfg.Storage),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// run opens storage and serves gRPC and HTTP until ctx is done or a server
// fails. Storage is closed before it returns.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	st, err := storageOpener(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.close()

	// Services
	authSvc := service.NewAuthService(st.users, session.NewIssuer([]byte(cfg.JWTKey), cfg.TokenTTL), st.lim)
	fileSvc := service.NewFileService(st.users, st.files, st.shares)

	// gRPC server with interceptors
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.SessionUnary(authSvc, api.AnonymousMethods),
		),
	}
	if cfg.TLS() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("TLS disabled: bearer tokens travel in plaintext")
	}
	s := grpc.NewServer(opts...)
	api.RegisterFilesServer(s, grpcserver.New(authSvc, fileSvc, logger))

	// Health & reflection (dev)
	if cfg.Health {
		hs := health.NewServer()
		hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(s, hs)
	}
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	var hlis net.Listener
	if cfg.HTTPAddr != "" {
		if hlis, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
			_ = lis.Close()
			return fmt.Errorf("http listen: %w", err)
		}
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc listening", zap.Stringer("addr", lis.Addr()), zap.Bool("tls", cfg.TLS()))
		errCh <- s.Serve(lis)
	}()

	var hsrv *http.Server
	if hlis != nil {
		hsrv = &http.Server{
			Handler:           httpgw.NewRouter(fileSvc, st.ping, logger.Named("http")),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("http listening", zap.Stringer("addr", hlis.Addr()))
			if err := hsrv.Serve(hlis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Wait for stop
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	// graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if hsrv != nil {
		if err := hsrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		s.Stop()
	}
	return serveErr
}
