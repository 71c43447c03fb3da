package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/servo-mc/servo/internal/logger"
	"github.com/servo-mc/servo/internal/service/servers"
)

func newStartCommand() *cobra.Command {
	var noRefresh bool

	command := &cobra.Command{
		Use:   "start NAME",
		Short: "Start a server in the foreground.",
		Long: `Downloads the newest build of the server's version when the cache is missing
or stale, then runs the server attached to this terminal until it exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			view := newProgressView(cmd.ErrOrStderr())

			process, err := a.Servers.Start(ctx, args[0], servers.StartOptions{
				NoRefresh: noRefresh,
				Progress:  view.Track(args[0]),
				Stdio: servers.Stdio{
					Stdin:  os.Stdin,
					Stdout: os.Stdout,
					Stderr: os.Stderr,
				},
			})

			view.Stop(err)

			if err != nil {
				return err
			}

			logger.InfoKV(ctx, "Server started", "name", process.Name, "version", process.Version.String(), "pid", process.PID)

			// The server shares the terminal and receives interrupts itself.
			if err = process.Wait(); err != nil {
				return err
			}

			logger.InfoKV(ctx, "Server exited", "name", process.Name)

			return nil
		},
	}

	command.Flags().BoolVar(&noRefresh, "no-refresh", false, "launch the cached build without contacting the registry")

	return command
}
