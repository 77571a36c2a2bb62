// Package cli implements the confman command line interface.
//
// Every manager operation is exposed as a subcommand. Global flags
// select the project (name and path), the output format, and the log
// verbosity. Domain errors exit with code 1, command errors with 2.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/confman-io/confman/internal/manager"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Project string
	Path    string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the confman CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "confman",
		Short: "confman - configuration lifecycle manager for ML projects",
		Long: `Manage versioned YAML configuration documents grouped into modules,
track per-project usage history, and keep an experiment ledger of
saved configurations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			logLevel := slog.LevelWarn
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Project, "project", "", "project name (defaults to the project directory name)")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", ".", "project root path")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewModuleCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewExperimentCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
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

// openManager builds a manager from the global flags. An empty
// --project falls back to the base name of the project path.
func openManager(opts *RootOptions) (*manager.Manager, error) {
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "resolve project path", err)
	}

	project := opts.Project
	if project == "" {
		project = filepath.Base(path)
	}

	m, err := manager.New(project, path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "initialize configuration manager", err)
	}
	return m, nil
}

// formatter builds an output formatter writing to the command's
// stdout.
func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
