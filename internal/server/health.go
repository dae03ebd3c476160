package server

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	repo "github.com/joseph-ayodele/bills-tracker/internal/repository"
)

// NewHealthServer returns a gRPC server exposing only the standard health
// service (and reflection for grpcurl).
func NewHealthServer() (*grpc.Server, *health.Server) {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(gs)
	return gs, hs
}

// WatchDatabase flips the health status with the database ping result until
// ctx is done.
func WatchDatabase(ctx context.Context, hs *health.Server, db *sql.DB, every time.Duration, logger *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			status := healthpb.HealthCheckResponse_SERVING
			if err := repo.HealthCheck(ctx, db, 2*time.Second, logger); err != nil {
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			hs.SetServingStatus("", status)
		}
	}
}
