package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toozej/go-ehparse/internal/server"
	"github.com/toozej/go-ehparse/internal/services/classify"
	"github.com/toozej/go-ehparse/internal/services/parser"
	"github.com/toozej/go-ehparse/internal/types"
)

var (
	classifyMessage   string
	classifyPage      bool
	classifyThreshold float64
)

var classifyCmd = &cobra.Command{
	Use:       "classify <kind> [file]",
	Short:     "Classify an archive result or copyright message",
	Long:      `Classify the message of an archive result or copyright page. The message is taken from --message, or read from file or stdin. With --page the input is a saved page and its message is parsed out first.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{classify.KindArchiveResult, classify.KindCopyright},
	RunE:      runClassifyCommand,
}

func runClassifyCommand(cmd *cobra.Command, args []string) error {
	kind := args[0]
	if !slices.Contains(cmd.ValidArgs, kind) {
		return fmt.Errorf("%w: %q (expected one of %s)", types.ErrUnknownKind, kind, strings.Join(cmd.ValidArgs, ", "))
	}

	logger := cliLogger()

	message := classifyMessage
	if message == "" {
		body, err := readInput(cmd, args[1:])
		if err != nil {
			return err
		}
		message = string(body)
		if classifyPage {
			p := parser.New(logger.Logger, server.ParserOptions(conf.Parser))
			record, err := p.ParseBytes(kind, body, "")
			if err != nil {
				return err
			}
			message, _ = parser.Message(record)
		}
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("no message to classify")
	}

	classifier := classify.NewClassifier(logger.Logger).WithThreshold(classifyThreshold)
	result, err := classifier.Classify(kind, strings.TrimSpace(message))
	if err != nil {
		return err
	}
	logger.LogClassification(commandContext(cmd), kind, string(result.Outcome), result.Confidence)

	return writeJSON(cmd.OutOrStdout(), result, false)
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyMessage, "message", "m", "", "Message text to classify instead of reading input")
	classifyCmd.Flags().BoolVarP(&classifyPage, "page", "p", false, "Treat the input as a saved page and parse its message out")
	classifyCmd.Flags().Float64Var(&classifyThreshold, "threshold", classify.DefaultThreshold, "Minimum match confidence for a known outcome")

	rootCmd.AddCommand(classifyCmd)
}
