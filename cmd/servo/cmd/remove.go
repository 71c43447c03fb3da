package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/AlecAivazis/survey.v1"
)

var (
	warningHeader = color.New(color.FgBlack, color.BgHiRed, color.Bold)
	secondary     = color.New(color.FgCyan)
)

func newRemoveCommand() *cobra.Command {
	var yes bool

	command := &cobra.Command{
		Use:   "remove NAME",
		Short: "Erase a server with its configuration, worlds and plugins.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			cfg, err := a.Servers.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if !yes {
				phrase := fmt.Sprintf("Yes, erase %s completely and irrecoverably.", cfg.Name)

				_, _ = fmt.Fprintf(cmd.OutOrStdout(),
					"%s This will irrecoverably erase %s, all of its configuration and worlds! To continue, type '%s'.\n",
					warningHeader.Sprint("WARNING!"), secondary.Sprint(cfg.Name), secondary.Sprint(phrase))

				var answer string
				if err = survey.AskOne(&survey.Input{Message: "Confirmation:"}, &answer, nil); err != nil {
					return err
				}

				if answer != phrase {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Abort.")

					return nil
				}
			}

			if err = a.Servers.Remove(ctx, cfg.Name); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed server %s\n", cfg.Name)

			return nil
		},
	}

	command.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return command
}
