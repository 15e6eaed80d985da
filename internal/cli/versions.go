package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/gamedb"
)

// NewVersionsCommand creates the versions command.
func NewVersionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the embedded game database versions",
		Long: `List the game database versions that ship with tally, oldest first.

Every version other than the latest is marked deprecated but remains
loadable for worlds that still reference it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(rootOpts, cmd)
		},
	}
}

func runVersions(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	versions := gamedb.Versions()

	if opts.Format == "json" {
		return formatter.Success(versions)
	}

	var b strings.Builder
	for _, v := range versions {
		marker := " "
		if v.ID == gamedb.Latest() {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %-14s %s", marker, v.ID, v.Name)
		if v.Deprecated {
			b.WriteString(" (deprecated)")
		}
		b.WriteString("\n")
		if opts.Verbose {
			fmt.Fprintf(&b, "    %s\n", v.Description)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}
