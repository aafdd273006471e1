package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/palimpsest/internal/store"
)

// MetaOptions holds flags shared by the meta subcommands.
type MetaOptions struct {
	*RootOptions
	Database string
	Doc      string
}

// MetaResult holds the output of a meta get.
type MetaResult struct {
	Doc   string `json:"doc"`
	Key   string `json:"key"`
	Value any    `json:"value"`
	Found bool   `json:"found"`
}

// NewMetaCommand creates the meta command group.
func NewMetaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Read and write per-document metadata",
		Long: `Read and write metadata key/value pairs attached to a document
partition. Values are stored JSON-encoded; a value that is not valid
JSON is stored as a JSON string.

Examples:
  palimpsest meta get --db ./state.db --doc notes --key cursor
  palimpsest meta set --db ./state.db --doc notes --key cursor --value 42
  palimpsest meta del --db ./state.db --doc notes --key cursor`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")
	cmd.PersistentFlags().StringVar(&opts.Doc, "doc", "", "document name (required)")
	_ = cmd.MarkPersistentFlagRequired("doc")

	cmd.AddCommand(newMetaGetCommand(opts))
	cmd.AddCommand(newMetaSetCommand(opts))
	cmd.AddCommand(newMetaDelCommand(opts))

	return cmd
}

func newMetaGetCommand(opts *MetaOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <key>",
		Short:         "Read a metadata value",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetaGet(opts, cmd, args[0])
		},
	}
}

func newMetaSetCommand(opts *MetaOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "set <key> <value>",
		Short:         "Write a metadata value",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetaSet(opts, cmd, args[0], args[1])
		},
	}
}

func newMetaDelCommand(opts *MetaOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "del <key>",
		Short:         "Delete a metadata value",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetaDel(opts, cmd, args[0])
		},
	}
}

func openMetaStore(opts *MetaOptions) (*store.Store, error) {
	if _, err := os.Stat(opts.Database); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runMetaGet(opts *MetaOptions, cmd *cobra.Command, key string) error {
	ctx := context.Background()

	st, err := openMetaStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	doc := norm.NFC.String(opts.Doc)
	raw, ok, err := st.GetMeta(ctx, doc, key)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read metadata", err)
	}

	result := MetaResult{Doc: doc, Key: key, Found: ok}
	if ok {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			decoded = raw
		}
		result.Value = decoded
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.JSON(result)
	}

	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("no value for %s/%s", doc, key))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%v\n", result.Value)
	return nil
}

func runMetaSet(opts *MetaOptions, cmd *cobra.Command, key, value string) error {
	ctx := context.Background()

	st, err := openMetaStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	// Store valid JSON verbatim, anything else as a JSON string.
	encoded := value
	if !json.Valid([]byte(value)) {
		b, err := json.Marshal(value)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode value", err)
		}
		encoded = string(b)
	}

	doc := norm.NFC.String(opts.Doc)
	if err := st.PutMeta(ctx, doc, key, encoded); err != nil {
		return WrapExitError(ExitCommandError, "failed to write metadata", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.JSON(map[string]string{"doc": doc, "key": key})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s/%s\n", doc, key)
	return nil
}

func runMetaDel(opts *MetaOptions, cmd *cobra.Command, key string) error {
	ctx := context.Background()

	st, err := openMetaStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	doc := norm.NFC.String(opts.Doc)
	if err := st.DeleteMeta(ctx, doc, key); err != nil {
		return WrapExitError(ExitCommandError, "failed to delete metadata", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.JSON(map[string]string{"doc": doc, "key": key})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", doc, key)
	return nil
}
