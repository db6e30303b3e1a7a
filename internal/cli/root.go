package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string

	// Config is populated from the config file in PersistentPreRunE.
	Config Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the arbor CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "arbor",
		Short: "Arbor - expression graph compiler and evaluator",
		Long: `Compile construction trees to validated expression graphs,
evaluate them with memoizing folds, and rewrite stored snapshots.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			explicit := cmd.PersistentFlags().Changed("config")
			path := opts.ConfigPath
			if path == "" {
				path = DefaultConfigPath
			}
			cfg, err := LoadConfig(path, explicit)
			if err != nil {
				return err
			}
			opts.Config = cfg

			// Flags win over config values.
			if !cmd.PersistentFlags().Changed("format") && cfg.Format != "" {
				opts.Format = cfg.Format
			}
			if opts.Database == "" {
				opts.Database = cfg.Database
			}

			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path (default arbor.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to snapshot database")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewRewriteCommand(opts))
	cmd.AddCommand(NewGCCommand(opts))

	return cmd
}

// configureLogging routes structured logs to stderr so stdout stays
// clean for command output.
func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
