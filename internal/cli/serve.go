package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tingly-dev/tingly-porter/internal/config"
	"github.com/tingly-dev/tingly-porter/internal/obs"
	"github.com/tingly-dev/tingly-porter/internal/obs/otel"
	"github.com/tingly-dev/tingly-porter/internal/server"
)

const (
	recentLogSize       = 1000
	meterShutdownBudget = 5 * time.Second
)

type serveFlags struct {
	host    string
	port    int
	debug   bool
	watch   bool
	logFile string
}

func (f *serveFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.host, "host", "", "Server host (default: from config)")
	fs.IntVarP(&f.port, "port", "p", 0, "Server port (default: from config or 12590)")
	fs.BoolVar(&f.debug, "debug", false, "Enable gin debug mode and debug logging")
	fs.BoolVar(&f.watch, "watch", true, "Reload the config file when it changes")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to this file as well as stderr")
}

// apply copies flags the user set over the loaded config
func (f *serveFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("host") {
		cfg.Server.Host = f.host
	}
	if fs.Changed("port") {
		cfg.Server.Port = f.port
	}
	if fs.Changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if f.debug {
		cfg.Log.Level = logrus.DebugLevel.String()
	}
}

// ServeCommand runs the form server in the foreground
func ServeCommand(load configLoader, version string) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the form server",
		Long: `Start the HTTP server offering the import, confirm-import, export and
bulk export action forms. The server stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if !flags.debug {
				gin.SetMode(gin.ReleaseMode)
			}

			recent := obs.NewRecentLogHook(recentLogSize, logrus.InfoLevel)
			closer, err := obs.SetupLogging(cfg.Log, recent)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			meters, err := otel.NewMeterSetup(ctx, otel.FromMetricsConfig(cfg.Metrics))
			if err != nil {
				return fmt.Errorf("failed to set up metrics: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), meterShutdownBudget)
				defer cancel()
				if err := meters.Shutdown(shutdownCtx); err != nil {
					logrus.Warnf("Failed to flush metrics: %v", err)
				}
			}()

			srv, err := server.NewServer(cfg,
				server.WithVersion(version),
				server.WithTracker(meters.Tracker()),
				server.WithRecentLog(recent),
				server.WithConfigWatch(flags.watch && cfg.ConfigFile != ""),
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Porter admin: http://%s\n", cfg.Address())
			if err := srv.Start(ctx); err != nil {
				return err
			}
			logrus.Info("Server stopped")
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
