package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand to root.
// With --short only the semantic version is printed, which suits scripts comparing
// the daemon and client builds.
func AttachCobraVersionCommand(root *cobra.Command) {
	var short bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the radio-bridge version, commit hash and build timestamp injected at build time.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), render(short))
		},
	}

	versionCmd.Flags().BoolVar(&short, "short", false, "print only the semantic version")

	root.AddCommand(versionCmd)
}

// render picks the version line printed by the version command.
func render(short bool) string {
	if short {
		return Short()
	}

	return Full()
}
