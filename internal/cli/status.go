package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the configuration root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			stats, err := m.Stats()
			if err != nil {
				return exitFor(err)
			}

			f := formatter(cmd, rootOpts)
			return f.Success(stats, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Total Modules: %d, Total Documents: %d\n", stats.Modules, stats.Documents)
				return err
			})
		},
	}
}
