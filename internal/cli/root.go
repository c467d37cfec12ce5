package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tingly-dev/tingly-porter/internal/config"
)

// BuildInfo is set by the main package from -ldflags
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
}

// NewRootCommand builds the tingly-porter command tree
func NewRootCommand(info BuildInfo) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "tingly-porter",
		Short: "Tingly Porter - import and export forms for admin resources",
		Long: `Tingly Porter serves the import, confirm-import, export and bulk export
action forms of an admin site over HTTP. It validates submissions, stages uploads
between the two import steps and hands validated requests to import and export
engines.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .json)")

	load := func() (*config.Config, error) {
		if configPath == "" {
			return config.DefaultConfig(), nil
		}
		return config.Load(configPath)
	}

	root.AddCommand(versionCommand(info))
	root.AddCommand(ServeCommand(load, info.Version))
	root.AddCommand(FormatsCommand(load))
	root.AddCommand(CheckConfigCommand(load))
	return root
}

func versionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tingly Porter\n")
			fmt.Fprintf(out, "Version:    %s\n", info.Version)
			fmt.Fprintf(out, "Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build Time: %s\n", info.BuildTime)
			fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Platform:   %s\n", info.Platform)
		},
	}
}

type configLoader func() (*config.Config, error)
