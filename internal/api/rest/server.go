package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/servo-mc/servo/internal/logger"
)

// shutdownTimeout bounds how long in-flight requests may take after cancellation.
const shutdownTimeout = 10 * time.Second

// Run serves the router on listenAddress until ctx is canceled, then shuts down
// gracefully and waits for background jobs.
func Run(ctx context.Context, listenAddress string, h *Handler, opts RouterOptions) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "http")

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	return Serve(ctx, lis, h, opts)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, lis net.Listener, h *Handler, opts RouterOptions) error {
	httpServer := &http.Server{
		Handler:           NewRouter(h, opts),
		ReadHeaderTimeout: shutdownTimeout,
	}

	logger.InfoKV(ctx, "HTTP server listening", "listen_address", lis.Addr().String())

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "HTTP shutdown incomplete", "error", err)
		}
	}()

	if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	h.Wait()
	logger.Info(ctx, "HTTP server stopped")

	return nil
}
