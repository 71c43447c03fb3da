package cmd

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List servers.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			configs, err := a.Servers.List(ctx)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Kind", "Version", "Cached build", "Status"})

			for _, cfg := range configs {
				status, err := a.Servers.Describe(ctx, cfg.Name)
				if err != nil {
					return err
				}

				cached := "-"
				if status.CachedBuild != nil {
					cached = strconv.Itoa(*status.CachedBuild)
				}

				state := "stopped"
				if status.Running {
					state = "running (pid " + strconv.Itoa(status.PID) + ")"
				}

				t.AppendRow(table.Row{cfg.Name, cfg.Kind.Name(), cfg.Version.String(), cached, state})
			}

			t.SetStyle(table.StyleLight)
			t.Render()

			return nil
		},
	}
}
