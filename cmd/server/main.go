// Command messenger-server starts the messenger gRPC server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/messenger/internal/api"
	"github.com/and161185/messenger/internal/blob"
	"github.com/and161185/messenger/internal/config"
	"github.com/and161185/messenger/internal/docstore"
	"github.com/and161185/messenger/internal/docstore/badgerstore"
	"github.com/and161185/messenger/internal/docstore/postgres"
	"github.com/and161185/messenger/internal/metrics"
	"github.com/and161185/messenger/internal/migrate"
	"github.com/and161185/messenger/internal/repository/document"
	grpcserver "github.com/and161185/messenger/internal/server/grpc"
	"github.com/and161185/messenger/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the document store and starts the gRPC and HTTP servers.
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Flags override env
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "gRPC listen address")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "document store: memory|postgres|badger")
	flag.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	flag.StringVar(&cfg.BadgerPath, "badger-path", cfg.BadgerPath, "badger data directory")
	flag.StringVar(&cfg.BlobDir, "blob-dir", cfg.BlobDir, "profile picture directory")
	flag.StringVar(&cfg.BlobBaseURL, "blob-base-url", cfg.BlobBaseURL, "public base URL of the HTTP server")
	flag.StringVar(&cfg.JWTKey, "jwt-key", cfg.JWTKey, "HS256 signing key (required)")
	flag.DurationVar(&cfg.AccessTTL, "access-ttl", cfg.AccessTTL, "access token TTL")
	flag.IntVar(&cfg.CASAttempts, "cas-attempts", cfg.CASAttempts, "compare-and-swap retries per document edit")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP address for /metrics and /images (empty disables)")
	flag.StringVar(&cfg.TLSCert, "tls-cert", cfg.TLSCert, "TLS certificate (PEM); empty serves plaintext")
	flag.StringVar(&cfg.TLSKey, "tls-key", cfg.TLSKey, "TLS private key (PEM)")
	flag.BoolVar(&cfg.Dev, "dev", cfg.Dev, "development logging and server reflection")
	flag.Parse()

	logger, _ := zap.NewProduction()
	if cfg.Dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Backend),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("bad configuration", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	blobs, err := blob.NewFSStore(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		logger.Fatal("blob store", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMessaging(reg)

	// Repositories
	backend := document.NewBackend(store, cfg.CASAttempts, logger.Named("store"))
	userRepo := document.NewUserRepo(backend)
	convRepo := document.NewConversationRepo(backend)
	msgRepo := document.NewMessageRepo(backend)

	// Services
	dirSvc := service.NewDirectoryService(userRepo)
	authSvc := service.NewAuthService(dirSvc, []byte(cfg.JWTKey), cfg.AccessTTL)
	msgSvc := service.NewMessagingService(convRepo, msgRepo, logger.Named("messaging"), m)

	// gRPC server with interceptors
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary([]byte(cfg.JWTKey), api.FullMethod(api.MethodSignIn)),
		),
	}
	if cfg.TLSCert != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	}
	s := grpc.NewServer(opts...)

	app := grpcserver.New(authSvc, dirSvc, msgSvc, blobs, []byte(cfg.JWTKey))
	api.RegisterMessengerServer(s, app)

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if cfg.Dev {
		reflection.Register(s)
	}

	// Listen
	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLSCert != ""))
		errCh <- s.Serve(lis)
	}()

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		mux.Handle("/images/", blobs.Handler())
		httpSrv = &http.Server{Addr: cfg.HTTPAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
		// graceful shutdown
		hs.Shutdown()
		if httpSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = httpSrv.Shutdown(sctx)
			cancel()
		}
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		_ = store.Close()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// openStore builds the configured document store backend.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		if _, err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db), nil
	case config.BackendBadger:
		return badgerstore.Open(cfg.BadgerPath)
	default:
		logger.Warn("in-memory store: data is lost on exit")
		return docstore.NewMemory(), nil
	}
}
