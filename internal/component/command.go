// Package component holds the lifecycle shared by the gesture binaries:
// command line, configuration loading, signal handling and the
// CommonBehavior monitor.
package component

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/robocomp/gesturecomp/internal/config"
	"github.com/robocomp/gesturecomp/internal/log"
)

// StartupCheckDelay is how long --startup-check waits before exiting.
const StartupCheckDelay = 200 * time.Millisecond

// ErrConnections is reported when the component cannot reach or publish
// the interfaces its configuration names.
var ErrConnections = errors.New("Error getting required connections, check config file")

// RunFunc is the body of a component once its configuration is loaded.
// It returns when ctx is done or the component fails.
type RunFunc func(ctx context.Context, cfg *config.Config) error

// Options are the command line settings shared by every component.
type Options struct {
	ConfigPath   string
	StartupCheck bool
	LogLevel     string
}

// NewCommand builds the root command of a component binary. The optional
// positional argument is the configuration file, etc/config by default.
func NewCommand(use, short string, run RunFunc) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           use + " [config]",
		Short:         short,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = config.DefaultPath
			if len(args) == 1 {
				opts.ConfigPath = args[0]
			}
			return Run(cmd.Context(), cmd.OutOrStdout(), opts, run)
		},
	}

	cmd.Flags().BoolVar(&opts.StartupCheck, "startup-check", false, "wait briefly and exit without starting the component")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// Run executes a component with already parsed options.
func Run(ctx context.Context, out io.Writer, opts *Options, run RunFunc) error {
	log.Init(opts.LogLevel)

	if opts.StartupCheck {
		fmt.Fprintln(out, "Startup check")
		select {
		case <-time.After(StartupCheckDelay):
		case <-ctx.Done():
		}
		return nil
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return run(ctx, cfg)
}

// Execute runs cmd until SIGINT or SIGTERM and exits non-zero on error.
func Execute(cmd *cobra.Command) {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
