package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/confman-io/confman/internal/docstore"
)

// DocumentOptions holds flags shared by the document commands.
type DocumentOptions struct {
	*RootOptions
	Experiment string
	Sets       []string
	File       string
	Override   bool
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <module> <version> | create <file>.yaml",
		Short: "Create a configuration document",
		Long: `Create a new configuration document, creating its module implicitly
when missing. The fresh document carries only the system-managed
DATETIME and VERSION keys; --set and --file values are merged in right
after, with the reserved keys protected.

Example:
  confman create data 1.0 --set lr=0.01
  confman create data_riiid_v1.0.yaml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseDocTarget(args, opts.Experiment)
			if err != nil {
				return err
			}
			payload, err := parsePayload(opts.Sets, opts.File)
			if err != nil {
				return exitFor(err)
			}

			m, err := openManager(opts.RootOptions)
			if err != nil {
				return err
			}
			defer m.Close()

			if target.byName {
				err = m.CreateByName(target.name, payload)
			} else {
				err = m.Create(target.ref, payload)
			}
			if err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, opts.RootOptions)
			return f.Success("created", nil)
		},
	}

	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "experiment name (defaults to the project name)")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "initial key=value entries (repeatable)")
	cmd.Flags().StringVar(&opts.File, "file", "", "YAML file with initial entries")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <module> <version> | update <file>.yaml",
		Short: "Update a configuration document",
		Long: `Update an existing configuration document with --set and --file
values. By default the payload is merged over the stored document and
the DATETIME/VERSION keys are protected; with --override the document
is replaced wholesale by the payload.

Example:
  confman update data 1.0 --set lr=0.001 --set optimizer=adam
  confman update data_riiid_v1.0.yaml --file new.yaml --override`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseDocTarget(args, opts.Experiment)
			if err != nil {
				return err
			}
			payload, err := parsePayload(opts.Sets, opts.File)
			if err != nil {
				return exitFor(err)
			}

			m, err := openManager(opts.RootOptions)
			if err != nil {
				return err
			}
			defer m.Close()

			if target.byName {
				err = m.UpdateByName(target.name, payload, opts.Override)
			} else {
				err = m.Update(target.ref, payload, opts.Override)
			}
			if err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, opts.RootOptions)
			return f.Success("updated", nil)
		},
	}

	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "experiment name (defaults to the project name)")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "key=value entries to write (repeatable)")
	cmd.Flags().StringVar(&opts.File, "file", "", "YAML file with entries to write")
	cmd.Flags().BoolVar(&opts.Override, "override", false, "replace the document wholesale instead of merging")

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <module> <version> | get <file>.yaml",
		Short: "Read a configuration document",
		Long: `Read a configuration document and record it as the module's most
recently used configuration in the project history.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseDocTarget(args, opts.Experiment)
			if err != nil {
				return err
			}

			m, err := openManager(opts.RootOptions)
			if err != nil {
				return err
			}
			defer m.Close()

			var doc docstore.Document
			if target.byName {
				doc, err = m.GetByName(target.name)
			} else {
				doc, err = m.Get(target.ref)
			}
			if err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, opts.RootOptions)
			return f.Success(doc, func(w io.Writer) error {
				return writeYAML(w, doc)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "experiment name (defaults to the project name)")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <module> <version> | delete <file>.yaml",
		Short: "Delete a configuration document",
		Long: `Delete a configuration document. Experiment records referencing it
are removed from every project ledger under the configuration root
before the file goes away.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseDocTarget(args, opts.Experiment)
			if err != nil {
				return err
			}

			m, err := openManager(opts.RootOptions)
			if err != nil {
				return err
			}
			defer m.Close()

			if target.byName {
				err = m.DeleteByName(target.name)
			} else {
				err = m.Delete(target.ref)
			}
			if err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, opts.RootOptions)
			return f.Success("deleted", nil)
		},
	}

	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "experiment name (defaults to the project name)")

	return cmd
}

// writeYAML renders a value as YAML to the writer.
func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(data))
	return err
}
