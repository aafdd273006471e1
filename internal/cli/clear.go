package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/palimpsest"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Database  string
	Directory string
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear <doc>",
		Short: "Delete all persisted state for a document",
		Long: `Delete every update row and all metadata for a document. With --dir
the document's own database file is removed; with --db only that
document's partition inside the shared file is cleared.

Examples:
  palimpsest clear notes --dir ./data
  palimpsest clear notes --db ./state.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to shared SQLite database")
	cmd.Flags().StringVar(&opts.Directory, "dir", "", "directory of per-document database files")

	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command, name string) error {
	ctx := context.Background()

	var clearOpts []palimpsest.Option
	if opts.Database != "" {
		clearOpts = append(clearOpts, palimpsest.WithPath(opts.Database))
	}
	if opts.Directory != "" {
		clearOpts = append(clearOpts, palimpsest.WithDirectory(opts.Directory))
	}

	if err := palimpsest.ClearDocument(ctx, name, clearOpts...); err != nil {
		return WrapExitError(ExitCommandError, "failed to clear document", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.JSON(map[string]string{"doc": name})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", name)
	return nil
}
