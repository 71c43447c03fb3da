package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/service/cache"
)

// latestVersion selects the newest version on the registry.
const latestVersion = "latest"

func newDownloadCommand() *cobra.Command {
	var (
		kindName string
		output   string
	)

	command := &cobra.Command{
		Use:   "download VERSION",
		Short: "Download a server jar to a file without caching it.",
		Long: `Downloads the jar of VERSION into a file. A version without a build selects
its newest build, "latest" selects the newest version. The file defaults to
KIND-MINECRAFT.jar in the current directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := server.ParseKind(kindName)
			if err != nil {
				return err
			}

			var requested *server.ServerVersion

			if args[0] != latestVersion {
				parsed, err := server.ParseServerVersion(args[0])
				if err != nil {
					return err
				}

				requested = &parsed
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			dir := "."
			if output != "" {
				dir = filepath.Dir(output)
			}

			tmp, err := os.CreateTemp(dir, ".servo-download-*")
			if err != nil {
				return fmt.Errorf("create download file: %w", err)
			}

			defer func() {
				_ = os.Remove(tmp.Name())
			}()

			view := newProgressView(cmd.ErrOrStderr())

			resolved, err := a.Downloader.DownloadTo(cmd.Context(), kind, requested, tmp, view.Track(args[0]))

			view.Stop(err)

			if closeErr := tmp.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("close download file: %w", closeErr)
			}

			if err != nil {
				return err
			}

			target := output
			if target == "" {
				target = server.CacheKey{Kind: kind, Minecraft: resolved.Minecraft}.Filename()
			}

			if err = os.Chmod(tmp.Name(), cache.ArtifactFileMode); err != nil {
				return fmt.Errorf("set download permissions: %w", err)
			}

			if err = os.Rename(tmp.Name(), target); err != nil {
				return fmt.Errorf("move download into place: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s %s into %s\n", kind.Name(), resolved, target)

			return nil
		},
	}

	command.Flags().StringVarP(&kindName, "kind", "k", server.DefaultKind, "server kind")
	command.Flags().StringVarP(&output, "output", "o", "", "file to write the jar to")

	return command
}
