package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tingly-dev/tingly-porter/internal/dataformat"
)

// CheckConfigCommand validates the config file and prints a summary
func CheckConfigCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := load()
			if err != nil {
				fmt.Fprintln(out, ErrorStyle.Render("Configuration is invalid"))
				return err
			}
			formats, err := cfg.ResolveFormats()
			if err != nil {
				fmt.Fprintln(out, ErrorStyle.Render("Configuration is invalid"))
				return err
			}

			source := cfg.ConfigFile
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintln(out, SuccessStyle.Render("Configuration is valid"))
			fmt.Fprintf(out, "Source:    %s\n", source)
			fmt.Fprintf(out, "Listen:    %s\n", cfg.Address())
			fmt.Fprintf(out, "Import:    %v\n", dataformat.Names(formats.Import))
			fmt.Fprintf(out, "Export:    %v\n", dataformat.Names(formats.Export))
			fmt.Fprintf(out, "Streaming: %v\n", dataformat.Names(formats.Streaming))
			fmt.Fprintf(out, "Action:    %v\n", dataformat.Names(formats.Action))

			if len(formats.Import) == 0 || len(formats.Export) == 0 {
				fmt.Fprintln(out, WarningStyle.Render("Warning: a form with no formats rejects every submission"))
			}
			return nil
		},
	}
}
