package version

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build details, overridden at link time with -ldflags "-X".
var (
	Version = "local"
	Commit  = ""
	Branch  = ""
	BuiltAt = ""
	Builder = ""
)

// Info is the build information printed by the version command.
type Info struct {
	Commit    string `json:"commit"`
	Version   string `json:"version"`
	Branch    string `json:"branch"`
	BuiltAt   string `json:"builtAt"`
	Builder   string `json:"builder"`
	GoVersion string `json:"goVersion,omitempty"`
}

// Get collects the linked build details, filling the commit from the
// embedded VCS stamp when the linker did not set one.
func Get() Info {
	info := Info{
		Commit:  Commit,
		Version: Version,
		Branch:  Branch,
		BuiltAt: BuiltAt,
		Builder: Builder,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = setting.Value
				}
			case "vcs.time":
				if info.BuiltAt == "" {
					info.BuiltAt = setting.Value
				}
			}
		}
	}
	return info
}

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Long:  `Print the version and build information.`,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(Get(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
