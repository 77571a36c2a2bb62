package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the most recently used configuration per module",
		Long: `Show the full usage history document shared by every project under
the configuration root: for each project, the last configuration file
read per module. Entries for modules that no longer exist are pruned
first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openManager(rootOpts)
			if err != nil {
				return err
			}
			defer m.Close()

			doc, err := m.History()
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
