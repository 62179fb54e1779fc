// Package main provides the CLI entry point for sheetstore.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/server"
)

var (
	addr          string
	logLevel      string
	pretty        bool
	noLookupNulls bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetstore",
		Short: "Serve in-memory sheets of typed cells and lookups",
		Long: `sheetstore keeps sheets of typed columns in memory and serves them
over HTTP. Cells hold literals or lookup("column", row) references to other
cells; lookups that would form a cycle are rejected.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}

	// the env default is read once, at start
	envOpts, envErr := sheetstore.OptionsFromEnv()

	rootCmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Address to listen on")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON responses")
	rootCmd.Flags().BoolVar(&noLookupNulls, "no-lookup-nulls", envOpts.OmitUnresolved,
		"Omit unresolved lookups from sheet reads instead of reporting null (env "+sheetstore.EnvNoLookupNulls+")")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		// an explicit flag wins over a malformed environment value
		if envErr != nil && !cmd.Flags().Changed("no-lookup-nulls") {
			return fmt.Errorf("invalid environment: %w", envErr)
		}
		return nil
	}

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := sheetstore.DefaultOptions()
	opts.OmitUnresolved = noLookupNulls

	srv := server.New(sheetstore.NewRegistry(), server.Options{
		Read:   opts,
		Pretty: pretty,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("configuration", "addr", addr, "no_lookup_nulls", opts.OmitUnresolved, "pretty", pretty)

	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
}
