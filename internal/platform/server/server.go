package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ogurasousui/employee-registry/internal/platform/config"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	serverName             = "employee-registry"
	defaultShutdownTimeout = 10 * time.Second
)

// Server は HTTP サーバーと、設定されていればヘルスチェック用 gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr      string
	grpcListenAddr  string
	shutdownTimeout time.Duration

	httpServer *fasthttp.Server
	grpcServer *grpc.Server
	health     *health.Server
	logger     zerolog.Logger
}

// New はサーバーを構築します。grpc_listen_addr が空の場合 gRPC サーバーは起動しません。
func New(cfg config.ServerConfig, handler fasthttp.RequestHandler, logger zerolog.Logger, opts ...grpc.ServerOption) *Server {
	s := &Server{
		listenAddr:      cfg.ListenAddr,
		grpcListenAddr:  cfg.GRPCListenAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
		httpServer: &fasthttp.Server{
			Handler:            handler,
			Name:               serverName,
			ReadTimeout:        cfg.ReadTimeout,
			WriteTimeout:       cfg.WriteTimeout,
			MaxRequestBodySize: cfg.MaxBodyBytes,
		},
	}

	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}

	if s.grpcListenAddr != "" {
		s.health = health.NewServer()
		s.grpcServer = grpc.NewServer(opts...)
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
	}

	return s
}

// Run はサーバーを起動し、コンテキストがキャンセルされると安全に停止します。
// どちらかのサーバーが異常終了した場合も、もう一方を停止してからエラーを返します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}

	var grpcLis net.Listener
	if s.grpcServer != nil {
		grpcLis, err = net.Listen("tcp", s.grpcListenAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.grpcListenAddr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", httpLis.Addr().String()).Msg("HTTP server listening")
		if err := s.httpServer.Serve(httpLis); err != nil {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil {
		g.Go(func() error {
			s.logger.Info().Str("addr", grpcLis.Addr().String()).Msg("gRPC health server listening")
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	s.logger.Info().Dur("timeout", s.shutdownTimeout).Msg("shutting down")

	if s.grpcServer != nil {
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP: %w", err)
	}
	return nil
}
