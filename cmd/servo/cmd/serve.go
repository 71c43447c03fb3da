package cmd

import (
	"context"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	grpcapi "github.com/servo-mc/servo/internal/api/grpc/servo"
	"github.com/servo-mc/servo/internal/api/rest"
	"github.com/servo-mc/servo/internal/service/servers"
)

func newServeCommand() *cobra.Command {
	var (
		httpAddress string
		grpcAddress string
	)

	command := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST and gRPC APIs.",
		Long: `Serves the REST API (with Prometheus metrics on /metrics) and the gRPC API
until interrupted. Launched servers inherit this process's output. An empty
address disables that API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("http-address") {
				httpAddress = a.Config.HTTPAddress
			}

			if !cmd.Flags().Changed("grpc-address") {
				grpcAddress = a.Config.GRPCAddress
			}

			gin.SetMode(gin.ReleaseMode)

			stdio := servers.Stdio{
				Stdout: os.Stdout,
				Stderr: os.Stderr,
			}

			// The first API to fail stops the other one.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				errs error
			)

			record := func(err error) {
				if err == nil {
					return
				}

				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				cancel()
			}

			if httpAddress != "" {
				handler := rest.NewHandler(a.Servers, stdio)
				options := rest.RouterOptions{
					Metrics:  a.Metrics.Handler(),
					Recorder: a.Metrics,
				}

				wg.Go(func() {
					record(rest.Run(ctx, httpAddress, handler, options))
				})
			}

			if grpcAddress != "" {
				wg.Go(func() {
					record(grpcapi.Run(ctx, grpcAddress, grpcapi.NewServer(a.Servers, stdio), a.Metrics))
				})
			}

			wg.Wait()

			return errs
		},
	}

	command.Flags().StringVar(&httpAddress, "http-address", "", "REST listen address (defaults to the configuration)")
	command.Flags().StringVar(&grpcAddress, "grpc-address", "", "gRPC listen address (defaults to the configuration)")

	return command
}
