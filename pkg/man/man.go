package man

import (
	"fmt"
	"os"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

// NewManCmd returns a hidden command that writes the root command's man page
// to stdout.
func NewManCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "man",
		Short:                 "Generates go-ehparse's command line manpages",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Hidden:                true,
		Args:                  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := Render(cmd.Root())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(os.Stdout, page)
			return err
		},
	}
}

// Render builds the section 1 man page for root and its subcommands.
func Render(root *cobra.Command) (string, error) {
	manPage, err := mcobra.NewManPage(1, root)
	if err != nil {
		return "", err
	}
	manPage = manPage.WithSection("Environment", "Configuration is read from the environment and an optional .env file.\n"+
		"SERVER_HOST, SERVER_PORT, PARSER_SITE_NAMES, PARSER_TIMEZONE, PARSER_CONFIG_FORM_SELECTOR,\n"+
		"SECURITY_RATE_LIMIT_REQUESTS_PER_SECOND, SECURITY_RATE_LIMIT_BURST, SECURITY_MAX_BODY_BYTES,\n"+
		"LOGGING_LEVEL, LOGGING_FORMAT, LOGGING_OUTPUT, LOGGING_ENABLE_HTTP.")
	return manPage.Build(roff.NewDocument()), nil
}
