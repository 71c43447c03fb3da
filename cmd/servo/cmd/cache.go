package cmd

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/AlecAivazis/survey.v1"
)

func newCacheCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the artifact cache.",
	}

	command.AddCommand(
		newCacheListCommand(),
		newCacheUpgradeCommand(),
		newCachePurgeCommand(),
	)

	return command
}

func newCacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached artifacts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			entries, err := a.Cache.Entries(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Key", "Build", "Path"})

			for _, entry := range entries {
				t.AppendRow(table.Row{entry.Key.String(), entry.Build, a.Cache.Path(entry.Key)})
			}

			t.SetStyle(table.StyleLight)
			t.Render()

			return nil
		},
	}
}

func newCacheUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Download newer builds of every cached artifact.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			view := newProgressView(cmd.ErrOrStderr())

			results, err := a.Downloader.RefreshAll(cmd.Context(), view.Observer())

			view.Stop(err)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Key", "Build", "Outcome"})

			for _, result := range results {
				build := "-"
				if result.Build > 0 {
					build = strconv.Itoa(result.Build)
				}

				outcome := "current"

				switch {
				case result.Err != nil:
					outcome = "failed"
				case result.Downloaded:
					outcome = "downloaded"
				}

				t.AppendRow(table.Row{result.Key.String(), build, outcome})
			}

			t.SetStyle(table.StyleLight)
			t.Render()

			return err
		},
	}
}

func newCachePurgeCommand() *cobra.Command {
	var yes bool

	command := &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached artifact.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			if !yes {
				confirmed := false

				prompt := &survey.Confirm{Message: "Delete every cached artifact?"}
				if err = survey.AskOne(prompt, &confirmed, nil); err != nil {
					return err
				}

				if !confirmed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Abort.")

					return nil
				}
			}

			removed, err := a.Cache.Purge(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached artifacts\n", removed)

			return nil
		},
	}

	command.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return command
}
