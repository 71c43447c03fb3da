package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/service/servers"
)

func newCreateCommand() *cobra.Command {
	var (
		kindName        string
		acceptEULA      bool
		extraJavaArgs   []string
		extraServerArgs []string
	)

	command := &cobra.Command{
		Use:   "create NAME VERSION",
		Short: "Create a server pinned to a version.",
		Long: `Creates the server configuration document and its empty configs, worlds and
plugins folders. VERSION is MAJOR.MINOR[.PATCH][-BUILD] or "latest".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := server.ParseKind(kindName)
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			cfg, err := a.Servers.Create(cmd.Context(), args[0], args[1], servers.CreateOptions{
				Kind:            kind,
				AcceptEULA:      acceptEULA,
				ExtraJavaArgs:   extraJavaArgs,
				ExtraServerArgs: extraServerArgs,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created server %s (%s %s)\n", cfg.Name, cfg.Kind.Name(), cfg.Version)

			return nil
		},
	}

	command.Flags().StringVarP(&kindName, "kind", "k", server.DefaultKind, "server kind")
	command.Flags().BoolVar(&acceptEULA, "accept-eula", false, "accept the Minecraft EULA for this server")
	command.Flags().StringArrayVar(&extraJavaArgs, "java-arg", nil, "extra argument passed to the runtime (repeatable)")
	command.Flags().StringArrayVar(&extraServerArgs, "server-arg", nil, "extra argument passed to the server (repeatable)")

	return command
}
