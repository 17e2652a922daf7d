package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/go-ehparse/pkg/config"
	"github.com/toozej/go-ehparse/pkg/logging"
	"github.com/toozej/go-ehparse/pkg/man"
	"github.com/toozej/go-ehparse/pkg/version"
)

var (
	conf  config.Config
	debug bool
)

var rootCmd = &cobra.Command{
	Use:              "go-ehparse",
	Short:            "Gallery site page extraction tool",
	Long:             `go-ehparse turns saved pages of a gallery-hosting site (listings, galleries, viewers, settings, archiver and notice pages) into typed JSON records, from the command line or over HTTP.`,
	Args:             cobra.ExactArgs(0),
	PersistentPreRun: rootCmdPreRun,
	Run:              rootCmdRun,
}

func rootCmdRun(cmd *cobra.Command, args []string) {
	// Show help when no subcommand is provided
	if err := cmd.Help(); err != nil {
		log.WithError(err).Error("Failed to show help")
	}
}

func rootCmdPreRun(cmd *cobra.Command, args []string) {
	debug, _ = cmd.Flags().GetBool("debug")
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	// Load configuration with debug flag
	conf = config.GetEnvVars(debug)
}

// cliLogger builds the logger used by one-shot commands. Logs go to stderr so
// stdout carries only the JSON result.
func cliLogger() *logging.Logger {
	cfg := conf.Logging
	cfg.Output = "stderr"
	if cfg.Level == "" {
		cfg.Level = "warn"
	}
	if debug {
		cfg.Level = "debug"
	}
	return logging.NewLogger(cfg)
}

// commandContext returns the command's context, falling back to Background
// for commands run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func init() {
	// create rootCmd-level flags
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug-level logging")

	// add sub-commands
	rootCmd.AddCommand(
		man.NewManCmd(),
		version.Command(),
	)
}
