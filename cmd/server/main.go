package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/wealthflow-dashboard/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-dashboard/internal/adapter/marketdata"
	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository"
	"github.com/simaogato/wealthflow-dashboard/internal/config"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/orchestrator"
)

const maintenanceInterval = time.Hour

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		logger.L.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)
	ctx := logger.ToContext(context.Background(), logger.L)

	// 2. Setup storage
	store, closer, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.L.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open storage")
	}
	defer closer.Close()

	// 3. Market feed and orchestrator
	feed := marketdata.NewClient(marketdata.Config{
		BaseURL:    cfg.MarketDataBaseURL,
		APIKey:     cfg.MarketDataAPIKey,
		VsCurrency: cfg.VsCurrency,
		Timeout:    cfg.MarketDataTimeout,
		RPS:        cfg.MarketDataRPS,
		CacheTTL:   cfg.QuoteCacheTTL,
	}, &logger.L)

	serial := &grpcadapter.Serializer{}
	orch := orchestrator.New(store, feed, orchestrator.Config{
		LargeExpenseThreshold: cfg.LargeExpenseThreshold,
		NotificationTTL:       cfg.NotificationTTL,
		SeedDelay:             cfg.NotificationSeedDelay,
		Currency:              cfg.Currency,
	}, time.Now, serial.Schedule, &logger.L)

	serial.Do(func() {
		if err := orch.StartSession(ctx, ""); err != nil {
			if domain.IsWarning(err) {
				logger.L.Warn().Err(err).Msg("Session started with unsaved changes")
			} else {
				logger.L.Error().Err(err).Msg("Session started with unreadable stores")
			}
		}
	})

	// 4. Start gRPC Server
	if cfg.JWTSecret == "" {
		logger.L.Warn().Msg("JWT_SECRET not set, only anonymous callers are accepted")
	}
	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.AuthInterceptor([]byte(cfg.JWTSecret))),
	)
	grpcServer.RegisterService(&grpcadapter.ServiceDesc, grpcadapter.NewServer(orch, serial, &logger.L))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.L.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	// Start server in a goroutine
	go func() {
		logger.L.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.L.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	stop := make(chan struct{})
	go runMaintenance(ctx, orch, serial, stop)

	// Graceful shutdown
	waitForShutdown(grpcServer, healthServer)
	close(stop)
}

// runMaintenance prunes expired notifications and refreshes the subscription periodically
func runMaintenance(ctx context.Context, orch *orchestrator.Orchestrator, serial *grpcadapter.Serializer, stop <-chan struct{}) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			serial.Do(func() {
				if _, err := orch.RunMaintenance(ctx); err != nil {
					logger.L.Warn().Err(err).Msg("Maintenance incomplete")
				}
			})
		}
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, healthServer *health.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.L.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	logger.L.Info().Msg("gRPC server stopped")
}
