package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/toozej/go-ehparse/internal/services/classify"
	"github.com/toozej/go-ehparse/internal/types"
	"github.com/toozej/go-ehparse/pkg/config"
)

func fixturePath(name string) string {
	return filepath.Join("..", "..", "internal", "services", "parser", "testdata", name)
}

// withCommand points cmd at fresh buffers and restores the package state
// the commands read.
func withCommand(t *testing.T, cmd *cobra.Command, stdin string) *bytes.Buffer {
	t.Helper()
	conf = config.Config{Logging: config.LoggingConfig{Level: "error"}}
	out := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	t.Cleanup(func() {
		cmd.SetIn(nil)
		cmd.SetOut(nil)
		parseCompact, parseContentType = false, ""
		classifyMessage, classifyPage, classifyThreshold = "", false, classify.DefaultThreshold
	})
	return out
}

func TestParseCommand_File(t *testing.T) {
	out := withCommand(t, parseCmd, "")

	require.NoError(t, runParseCommand(parseCmd, []string{"copyright", fixturePath("copyright.html")}))

	var notice types.CopyrightNotice
	require.NoError(t, json.Unmarshal(out.Bytes(), &notice))
	require.Contains(t, notice.Message, "Example Media")
	require.Contains(t, out.String(), "\n  \"message\"", "output should be indented by default")
}

func TestParseCommand_StdinCompact(t *testing.T) {
	out := withCommand(t, parseCmd, `<html><body><div id="db"><p>Your H@H client appears to be offline.</p></div></body></html>`)
	parseCompact = true

	require.NoError(t, runParseCommand(parseCmd, []string{"archive_result", "-"}))
	require.Equal(t, `{"message":"Your H@H client appears to be offline."}`+"\n", out.String())
}

func TestParseCommand_ContentTypeCharset(t *testing.T) {
	out := withCommand(t, parseCmd, "<html><body><p>Soci\xe9t\xe9</p></body></html>")
	parseCompact = true
	parseContentType = "text/html; charset=iso-8859-1"

	require.NoError(t, runParseCommand(parseCmd, []string{"archive_result"}))
	require.Contains(t, out.String(), "Société")
}

func TestParseCommand_Errors(t *testing.T) {
	withCommand(t, parseCmd, "<html><body></body></html>")

	err := runParseCommand(parseCmd, []string{"torrents"})
	require.ErrorIs(t, err, types.ErrUnknownKind)

	err = runParseCommand(parseCmd, []string{"gallery", filepath.Join(t.TempDir(), "missing.html")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.html")

	err = runParseCommand(parseCmd, []string{"gallery"})
	require.True(t, types.IsParseFailure(err), "got %v", err)
}

func TestClassifyCommand(t *testing.T) {
	t.Run("message flag", func(t *testing.T) {
		out := withCommand(t, classifyCmd, "")
		classifyMessage = "Your H@H client appears to be offline. Turn it on, then try again."

		require.NoError(t, runClassifyCommand(classifyCmd, []string{"archive_result"}))

		var result classify.Result
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, classify.OutcomeClientOffline, result.Outcome)
	})

	t.Run("message on stdin", func(t *testing.T) {
		out := withCommand(t, classifyCmd, "This gallery is unavailable due to a copyright claim by Example Media. Sorry about that.\n")

		require.NoError(t, runClassifyCommand(classifyCmd, []string{"copyright"}))

		var result classify.Result
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, classify.OutcomeCopyright, result.Outcome)
		require.Equal(t, "Example Media", result.Owner)
	})

	t.Run("saved page", func(t *testing.T) {
		out := withCommand(t, classifyCmd, "")
		classifyPage = true

		require.NoError(t, runClassifyCommand(classifyCmd, []string{"archive_result", fixturePath("archive_result.html")}))

		var result classify.Result
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, classify.OutcomeNoHathClient, result.Outcome)
	})

	t.Run("errors", func(t *testing.T) {
		withCommand(t, classifyCmd, "   ")

		require.ErrorIs(t, runClassifyCommand(classifyCmd, []string{"gallery"}), types.ErrUnknownKind)
		require.EqualError(t, runClassifyCommand(classifyCmd, []string{"copyright"}), "no message to classify")
	})
}

func TestKindsCommand(t *testing.T) {
	out := withCommand(t, kindsCmd, "")
	kindsCmd.Run(kindsCmd, nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Contains(t, lines, "gallery")
	require.Contains(t, lines, "archive_result")
	require.Len(t, lines, 9)
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"parse", "classify", "kinds", "serve", "man", "version"} {
		require.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestProperty_WriteJSONCompactIsOneLine(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234) // Use a fixed seed for reproducibility
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("compact output is a single line that round-trips", prop.ForAll(
		func(message string) bool {
			var buf bytes.Buffer
			if err := writeJSON(&buf, types.ArchiveResult{Message: message}, true); err != nil {
				return false
			}
			if strings.Count(buf.String(), "\n") != 1 {
				return false
			}
			var decoded types.ArchiveResult
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				return false
			}
			return decoded.Message == message
		},
		gen.AnyString().SuchThat(func(s string) bool { return strings.ToValidUTF8(s, "") == s }),
	))

	properties.TestingRun(t)
}
