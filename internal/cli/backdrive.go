package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/backdrive"
	"github.com/roach88/tally/internal/gamedb"
	"github.com/roach88/tally/internal/graph"
)

// BackdriveOptions holds flags for the backdrive command.
type BackdriveOptions struct {
	*RootOptions
	Path     string
	Target   string
	Rate     float64
	Mode     string
	MaxClock float64
}

// BackdriveResult reports the solved settings for a building.
type BackdriveResult struct {
	// Path of the solved building in the plan's tree.
	Path string `json:"path"`
	// Building type that was solved.
	Building gamedb.BuildingID `json:"building"`
	// Copies and Clock are the solved settings.
	Copies float64 `json:"copies"`
	Clock  float64 `json:"clock"`
	// WholeCopies machines run at Clock; if LastClock is nonzero one
	// further machine runs at LastClock.
	WholeCopies float64 `json:"whole_copies"`
	LastClock   float64 `json:"last_clock"`
	// Rate is the building's net rate for the target with the
	// solved settings.
	Rate float64 `json:"rate"`
	// Power is the building's net power in MW.
	Power float64 `json:"power"`
}

func (r BackdriveResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s: %g copies at %g%% clock", r.Building, r.Path, r.Copies, r.Clock*100)
	if r.LastClock > 0 && r.WholeCopies > 0 {
		fmt.Fprintf(&b, " (%g at %g%% + 1 at %g%%)", r.WholeCopies, r.Clock*100, r.LastClock*100)
	}
	fmt.Fprintf(&b, "\nnet rate %g, power %g MW", r.Rate, r.Power)
	return b.String()
}

// NewBackdriveCommand creates the backdrive command.
func NewBackdriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackdriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backdrive <plan.yaml>",
		Short: "Solve a building's settings from a target rate",
		Long: `Solve the copies and clock speed of one building in a plan so that
it nets a requested rate for an item or for power.

The building is addressed by its path in the plan: dot-separated
child indices from the root, so "1.0" is the first child of the
plan's second node.

Example:
  tally backdrive factory.yaml --path 1 --target Desc_IronIngot_C --rate 45
  tally backdrive factory.yaml --path 0 --target power --rate 100 --mode uniform`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackdrive(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "path of the building, as dot-separated child indices (required)")
	cmd.Flags().StringVar(&opts.Target, "target", "", `target: an item id or "power" (required)`)
	cmd.Flags().Float64Var(&opts.Rate, "rate", 0, "requested net rate, per minute or MW (required)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "solve mode for every building category (variable|uniform)")
	cmd.Flags().Float64Var(&opts.MaxClock, "max-clock", accounting.MaxClockSpeed, "clock speed cap in uniform mode")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("rate")

	return cmd
}

func runBackdrive(opts *BackdriveOptions, planPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	w, err := buildPlan(planPath)
	if err != nil {
		return err
	}
	db, err := w.PostLoad()
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to load the plan's database", err)
	}

	path, err := parsePath(opts.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid path %q", opts.Path), err)
	}
	node, ok := graph.Get(w.Root, path)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("no node at path %q", opts.Path))
	}

	policy, err := solvePolicy(opts)
	if err != nil {
		return err
	}
	target := parseTarget(opts.Target)

	solved, err := backdrive.NewSolver(db, policy).Solve(node, target, opts.Rate)
	if err != nil {
		return WrapExitError(ExitFailure, "unable to solve", err)
	}

	result := solvedResult(opts.Path, target, solved)
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// solvePolicy builds the solver policy from flags. Without --mode the
// per-category defaults apply; with it, every category solves in the
// requested mode.
func solvePolicy(opts *BackdriveOptions) (backdrive.Policy, error) {
	if opts.Mode == "" {
		return backdrive.DefaultPolicy(), nil
	}
	mode, err := backdrive.ParseMode(opts.Mode)
	if err != nil {
		return backdrive.Policy{}, WrapExitError(ExitCommandError, "invalid mode", err)
	}
	shared := backdrive.BuildingPolicy{Mode: mode, UniformMaxClock: opts.MaxClock}
	return backdrive.Policy{Manufacturer: shared, Extractor: shared, Generator: shared}, nil
}

// parseTarget maps the --target flag onto an item or power target.
func parseTarget(s string) gamedb.ItemOrPower {
	if strings.EqualFold(s, "power") {
		return gamedb.PowerTarget
	}
	return gamedb.ItemTarget(gamedb.ItemID(s))
}

// parsePath parses dot-separated child indices, such as "1.0.2". An
// empty string is the root.
func parsePath(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ".")
	path := make([]int, len(parts))
	for i, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%q is not a child index", part)
		}
		path[i] = idx
	}
	return path, nil
}

// solvedResult summarizes a solved building node.
func solvedResult(path string, target gamedb.ItemOrPower, node *accounting.Node) BackdriveResult {
	b, _ := node.Building()
	clock := 1.0
	if b.Settings != nil {
		clock = b.Settings.ClockSpeed()
	}
	whole, lastClock := accounting.SplitCopies(b.Copies, clock)

	balance := node.Balance()
	rate := balance.Power()
	if item, ok := target.Item(); ok {
		rate = balance.Item(item)
	}
	return BackdriveResult{
		Path:        path,
		Building:    b.Building,
		Copies:      b.Copies,
		Clock:       clock,
		WholeCopies: whole,
		LastClock:   lastClock,
		Rate:        rate,
		Power:       balance.Power(),
	}
}
