package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/palimpsest/internal/store"
)

// DocsOptions holds flags for the docs command.
type DocsOptions struct {
	*RootOptions
	Database string
}

// DocSummary is one document partition in the listing output.
type DocSummary struct {
	Name    string `json:"name"`
	Updates int64  `json:"updates"`
}

// DocsResult holds the docs listing output.
type DocsResult struct {
	Database  string       `json:"database"`
	Documents []DocSummary `json:"documents"`
}

// NewDocsCommand creates the docs command.
func NewDocsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List document partitions in a database file",
		Long: `List every document partition stored in a database file, with the
number of live update rows per partition. Documents that carry only
metadata are listed with a zero count.

Examples:
  palimpsest docs --db ./state.db
  palimpsest docs --db ./state.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDocs(opts *DocsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	// Refuse to create an empty database as a side effect of listing.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	infos, err := st.ListDocs(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list documents", err)
	}

	result := DocsResult{
		Database:  opts.Database,
		Documents: make([]DocSummary, 0, len(infos)),
	}
	for _, info := range infos {
		result.Documents = append(result.Documents, DocSummary{
			Name:    info.Name,
			Updates: info.Updates,
		})
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.JSON(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Documents) == 0 {
		fmt.Fprintf(w, "No documents in %s\n", opts.Database)
		return nil
	}
	for _, doc := range result.Documents {
		fmt.Fprintf(w, "%s\t%d\n", doc.Name, doc.Updates)
	}
	return nil
}
