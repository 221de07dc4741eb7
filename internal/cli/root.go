package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardgametracker/internal/backend"
)

var (
	cfg    *Config
	client *backend.Client
	out    *Output
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var (
		configFile string
		flags      = DefaultConfig()
	)

	rootCmd := &cobra.Command{
		Use:   "bgtrack",
		Short: "CLI tool for the board game tracker backend",
		Long: `bgtrack talks to the board game tracker REST backend.

It lists and imports games, manages players and locations, records play
sessions and shows statistics, settings and badges.

Defaults are read from ~/.bgtrack/config.yaml and BGTRACK_SERVER,
BGTRACK_OUTPUT and BGTRACK_TIMEOUT; flags override both.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := LoadConfig(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				resolved.ServerURL = flags.ServerURL
			}
			if cmd.Flags().Changed("output") {
				resolved.Output = flags.Output
			}
			if cmd.Flags().Changed("verbose") {
				resolved.Verbose = flags.Verbose
			}
			if cmd.Flags().Changed("timeout") {
				resolved.Timeout = flags.Timeout
			}
			if err := resolved.Validate(); err != nil {
				return err
			}

			cfg = resolved
			client = NewClient(cfg)
			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", DefaultConfigFile(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&flags.ServerURL, "server", flags.ServerURL, "Backend URL (env: BGTRACK_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text, json (env: BGTRACK_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", flags.Verbose, "Log each command to stderr")
	rootCmd.PersistentFlags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Backend request timeout (env: BGTRACK_TIMEOUT)")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newLocationCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newBadgeCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command until it finishes or is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd.ErrOrStderr(), err)
		stop()
		os.Exit(1)
	}
}
