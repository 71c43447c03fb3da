package servo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/servo-mc/servo/internal/logger"
)

// RequestIDKey is the metadata key carrying the request id.
const RequestIDKey = "x-request-id"

// RequestRecorder receives one observation per finished call.
type RequestRecorder interface {
	ObserveRequest(api, route string, code int)
}

// Run serves srv on listenAddress until ctx is canceled, then stops gracefully.
func Run(ctx context.Context, listenAddress string, srv *Server, recorder RequestRecorder) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "grpc")

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	return Serve(ctx, lis, srv, recorder)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, lis net.Listener, srv *Server, recorder RequestRecorder) error {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(recorder)))
	RegisterServerServiceServer(grpcServer, srv)

	logger.InfoKV(ctx, "gRPC server listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// unaryLogger tags each call with a request id, logs it and records it in metrics.
func unaryLogger(recorder RequestRecorder) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(RequestIDKey); len(values) > 0 {
				id = values[0]
			}
		}

		if id == "" {
			id = uuid.NewString()
		}

		ctx = logger.WithName(ctx, "grpc")
		ctx = logger.WithKV(ctx, "request_id", id)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		if recorder != nil {
			recorder.ObserveRequest("grpc", info.FullMethod, int(code))
		}

		kvs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"latency_ms", time.Since(start).Milliseconds(),
		}

		if err != nil {
			logger.WarnKV(ctx, "gRPC request", append(kvs, "error", err)...)
		} else {
			logger.InfoKV(ctx, "gRPC request", kvs...)
		}

		return resp, err
	}
}
