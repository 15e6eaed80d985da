package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/tally/internal/plan"
	"github.com/roach88/tally/internal/report"
	"github.com/roach88/tally/internal/world"
)

// BalanceOptions holds flags for the balance command.
type BalanceOptions struct {
	*RootOptions
	Locale string
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BalanceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "balance <plan.yaml>",
		Short: "Compute the production balance of a plan",
		Long: `Compile a YAML factory plan and report its production balance:
net power and per-item rates, split into production and consumption.

Example:
  tally balance factory.yaml
  tally balance factory.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Locale, "locale", "en", "locale for number formatting")
	return cmd
}

func runBalance(opts *BalanceOptions, planPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	w, err := buildPlan(planPath)
	if err != nil {
		return err
	}
	db, err := w.PostLoad()
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to load the plan's database", err)
	}
	return writeReport(formatter, report.ForWorld(w, db), opts.Locale)
}

// buildPlan loads a plan file and compiles it into a world.
func buildPlan(path string) (*world.World, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "unable to read plan", err)
	}
	w, err := p.Build()
	if err != nil {
		return nil, WrapExitError(ExitFailure, "unable to compile plan", err)
	}
	return w, nil
}

// writeReport renders a report in the configured format.
func writeReport(formatter *OutputFormatter, r *report.Report, locale string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid locale %q", locale), err)
	}
	if formatter.Format == "json" {
		return formatter.Success(r)
	}
	fmt.Fprint(formatter.Writer, r.Text(tag))
	return nil
}
