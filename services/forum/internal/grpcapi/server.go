package grpcapi

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// NewServer builds a grpc.Server exposing ForumService, the standard health
// service and reflection. The health server is returned so shutdown can flip
// it to NOT_SERVING first.
func NewServer(store ForumStore, log *zap.Logger) (*grpc.Server, *health.Server) {
	if log == nil {
		log = zap.NewNop()
	}
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary(log)))
	RegisterForumServiceServer(srv, &ForumService{Store: store, Log: log})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return srv, hs
}

func logUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("took", time.Since(start)))
		return resp, err
	}
}
