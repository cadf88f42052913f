package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usman-global/usman-books/internal/store"
)

func newDumpCommand(e *env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export the committed state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.load(cmd.Context())
			if err != nil {
				return err
			}
			snap := st.Snapshot()
			if out == "" {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			if err := store.WriteFile(out, snap); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote version %d to %s\n", snap.Version, out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
