package main

import (
	"context"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/example/learnhub/internal/platform/analytics"
	"github.com/example/learnhub/internal/platform/config"
	"github.com/example/learnhub/internal/platform/httpserver"
	"github.com/example/learnhub/internal/platform/logging"
	"github.com/example/learnhub/internal/platform/natsconn"
	"github.com/example/learnhub/internal/platform/run"
	forumconfig "github.com/example/learnhub/services/forum/internal/config"
	"github.com/example/learnhub/services/forum/internal/events"
	"github.com/example/learnhub/services/forum/internal/forum"
	"github.com/example/learnhub/services/forum/internal/grpcapi"
	"github.com/example/learnhub/services/forum/internal/handlers"
	"github.com/example/learnhub/services/forum/internal/persistence"
	"github.com/example/learnhub/services/forum/internal/persistence/kv"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	fcfg := forumconfig.LoadForum()

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slot, err := kv.Open(startCtx, fcfg.StoreDSN, cfg.IsProd())
	if err != nil {
		log.Error("forum store open", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}
	if fcfg.StoreDSN == "" {
		log.Warn("FORUM_STORE_DSN not set, using in-memory store (development only)")
	}
	adapter := persistence.New(slot, persistence.Options{
		Key:         fcfg.StoreKey,
		Compression: persistence.ParseCompression(fcfg.Compression),
		Logger:      log,
	})

	opts := []forum.Option{
		forum.WithLogger(log),
		forum.WithIDGenerator(forum.NewIDGenerator(fcfg.IDStrategy)),
	}
	var nc *nats.Conn
	if fcfg.AnalyticsEnabled {
		// non-fatal if NATS unavailable
		nc, err = natsconn.Connect(natsconn.Options{Logger: log})
		if err != nil {
			log.Warn("nats connect, analytics disabled", zap.Error(err))
			nc = nil
		} else {
			js, err := nc.JetStream()
			if err != nil {
				log.Warn("jetstream, analytics disabled", zap.Error(err))
			} else {
				opts = append(opts, forum.WithObserver(events.Observer(analytics.New(js, log))))
			}
		}
	}
	store := forum.NewStore(startCtx, adapter, opts...)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return adapter.Ping(ctx)
	}})
	limiter := httpserver.NewRateLimiter(fcfg.RateLimitRPS, fcfg.RateLimitBurst)
	handlers.Routes(r, store, log, limiter.Middleware)

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Router: r})

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		run.Exit(1)
	}
	grpcSrv, health := grpcapi.NewServer(store, log)
	go func() {
		log.Info("grpc server starting", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	runner := run.New(log)
	code := runner.WithSignals(func(_ context.Context) error {
		return srv.Start(log)
	})

	health.SetServingStatus(grpcapi.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	stopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(run.ShutdownTimeout):
		grpcSrv.Stop()
	}
	runner.Graceful("http", srv.Shutdown)
	runner.Graceful("forum store", store.Close)
	if err := adapter.Close(); err != nil {
		log.Warn("forum store close", zap.Error(err))
	}
	if nc != nil {
		nc.Close()
	}
	log.Info("exit", zap.Int("code", code))
	_ = log.Sync()
	run.Exit(code)
}
