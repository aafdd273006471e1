// Package main is the entry point for the palimpsest CLI.
//
// The CLI inspects and manages palimpsest database files: listing
// document partitions, reading and writing per-document metadata,
// and clearing persisted document state.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/roach88/palimpsest/internal/cli"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "palimpsest: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
