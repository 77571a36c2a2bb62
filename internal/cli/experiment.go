package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/confman-io/confman/internal/ledger"
	"github.com/confman-io/confman/internal/manager"
)

// ExperimentOptions holds flags for the experiment commands.
type ExperimentOptions struct {
	*RootOptions
	Experiment string
	Note       string
}

// NewExperimentCommand creates the exp command group.
func NewExperimentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exp",
		Short: "Manage experiment records",
		Long: `Manage the project's experiment ledger: deliberate save points
linking configuration documents to free-text notes. Records are
addressed by their ordinal row position as printed by "exp list".`,
	}

	cmd.AddCommand(newExpSaveCommand(rootOpts))
	cmd.AddCommand(newExpListCommand(rootOpts))
	cmd.AddCommand(newExpLoadCommand(rootOpts))
	cmd.AddCommand(newExpDeleteCommand(rootOpts))

	return cmd
}

func newExpSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExperimentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <module> <version>",
		Short: "Save an experiment record",
		Long: `Append a save point referencing a configuration document to the
project's experiment ledger. Repeated saves of the same document
create repeated rows.

Example:
  confman exp save training 1.0 --note "warmstart"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("version must be a number, got %q", args[1]), nil)
			}

			m, err := openManager(opts.RootOptions)
			if err != nil {
				return err
			}
			defer m.Close()

			ref := manager.Ref{Module: args[0], Version: version, Experiment: opts.Experiment}
			if err := m.SaveExperiment(ref, opts.Note); err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, opts.RootOptions)
			return f.Success("saved", nil)
		},
	}

	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "experiment name (defaults to the project name)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "free-text note for the record")

	return cmd
}

func newExpListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List experiment records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			rows := m.Experiments()

			f := formatter(cmd, rootOpts)
			return f.Success(rowsPayload(rows), func(w io.Writer) error {
				for i, r := range rows {
					if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, r.Datetime, r.Yaml, r.Note); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newExpLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <index>",
		Short: "Load the document referenced by an experiment record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("index must be an integer, got %q", args[0]), nil)
			}

			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			doc, err := m.LoadExperiment(index)
			if err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, rootOpts)
			return f.Success(doc, func(w io.Writer) error {
				return writeYAML(w, doc)
			})
		},
	}
}

func newExpDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete an experiment record",
		Long: `Delete the record at the given row position from the current
project's ledger only. Remaining rows renumber densely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("index must be an integer, got %q", args[0]), nil)
			}

			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.DeleteExperiment(index); err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, rootOpts)
			return f.Success("deleted", nil)
		},
	}
}

// expRow is the JSON shape of one ledger row.
type expRow struct {
	Index      int     `json:"index"`
	ID         string  `json:"id"`
	Datetime   string  `json:"datetime"`
	Yaml       string  `json:"yaml"`
	Module     string  `json:"module"`
	Experiment string  `json:"experiment_name"`
	Version    float64 `json:"version"`
	Note       string  `json:"note"`
}

func rowsPayload(rows []ledger.Row) []expRow {
	out := make([]expRow, len(rows))
	for i, r := range rows {
		out[i] = expRow{
			Index:      i,
			ID:         r.ID,
			Datetime:   r.Datetime,
			Yaml:       r.Yaml,
			Module:     r.Module,
			Experiment: r.Experiment,
			Version:    r.Version,
			Note:       r.Note,
		}
	}
	return out
}
