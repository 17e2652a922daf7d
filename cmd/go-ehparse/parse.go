package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/toozej/go-ehparse/internal/server"
	"github.com/toozej/go-ehparse/internal/services/parser"
	"github.com/toozej/go-ehparse/internal/types"
)

var (
	parseCompact     bool
	parseContentType string
)

var parseCmd = &cobra.Command{
	Use:       "parse <kind> [file]",
	Short:     "Parse a saved page into a JSON record",
	Long:      `Parse a saved page of the given kind and print the extracted record as JSON. The page is read from file, or from stdin when no file (or "-") is given. Run "go-ehparse kinds" for the accepted kinds.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: parser.Kinds,
	RunE:      runParseCommand,
}

func runParseCommand(cmd *cobra.Command, args []string) error {
	kind := args[0]
	if !slices.Contains(parser.Kinds, kind) {
		return fmt.Errorf("%w: %q (expected one of %s)", types.ErrUnknownKind, kind, strings.Join(parser.Kinds, ", "))
	}

	body, err := readInput(cmd, args[1:])
	if err != nil {
		return err
	}

	logger := cliLogger()
	p := parser.New(logger.Logger, server.ParserOptions(conf.Parser))

	start := time.Now()
	record, err := p.ParseBytes(kind, body, parseContentType)
	elapsed := time.Since(start)

	logger.LogParse(commandContext(cmd), kind, len(body), elapsed, err)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), record, parseCompact)
}

func init() {
	parseCmd.Flags().BoolVarP(&parseCompact, "compact", "c", false, "Print compact single-line JSON")
	parseCmd.Flags().StringVar(&parseContentType, "content-type", "", `Content-Type of the saved page, used to detect its charset (e.g. "text/html; charset=Shift_JIS")`)

	rootCmd.AddCommand(parseCmd)
}
