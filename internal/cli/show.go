package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [module]",
		Short: "List configuration documents",
		Long: `List document file names of one module, or of every module when no
module is given. Scan only - no history or ledger side effects.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			f := formatter(cmd, rootOpts)

			if len(args) == 1 {
				names, err := m.Show(args[0])
				if err != nil {
					return exitFor(err)
				}
				return f.Success(names, func(w io.Writer) error {
					return writeNames(w, names)
				})
			}

			all, err := m.ShowAll()
			if err != nil {
				return exitFor(err)
			}
			return f.Success(all, func(w io.Writer) error {
				modules := make([]string, 0, len(all))
				for module := range all {
					modules = append(modules, module)
				}
				sort.Strings(modules)

				for _, module := range modules {
					if _, err := fmt.Fprintf(w, "%s:\n", module); err != nil {
						return err
					}
					if err := writeIndented(w, all[module]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func writeNames(w io.Writer, names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func writeIndented(w io.Writer, names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
