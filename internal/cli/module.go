package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewModuleCommand creates the module command group.
func NewModuleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage configuration modules",
	}

	cmd.AddCommand(newModuleCreateCommand(rootOpts))
	cmd.AddCommand(newModuleDeleteCommand(rootOpts))
	cmd.AddCommand(newModuleListCommand(rootOpts))

	return cmd
}

func newModuleCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.CreateModule(args[0]); err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, rootOpts)
			return f.Success(fmt.Sprintf("module %q created", args[0]), nil)
		},
	}
}

func newModuleDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a module and everything in it",
		Long: `Delete a module directory with all of its documents. Experiment
records referencing the module are removed from every project ledger
under the configuration root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.DeleteModule(args[0]); err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, rootOpts)
			return f.Success(fmt.Sprintf("module %q deleted", args[0]), nil)
		},
	}
}

func newModuleListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			modules, err := m.Modules()
			if err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, rootOpts)
			return f.Success(modules, func(w io.Writer) error {
				for _, name := range modules {
					if _, err := fmt.Fprintln(w, name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
