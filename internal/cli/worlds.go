package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/accounting"
	"github.com/roach88/tally/internal/report"
	"github.com/roach88/tally/internal/store"
	"github.com/roach88/tally/internal/world"
)

// WorldsOptions holds flags shared by the worlds subcommands.
type WorldsOptions struct {
	*RootOptions
	StorePath string
}

// NewWorldsCommand creates the worlds command and its subcommands.
func NewWorldsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WorldsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "Manage saved worlds",
		Long: `Manage the worlds saved in a tally store.

A store is a SQLite file holding any number of saved worlds plus the
id of the selected one. Subcommands that take an optional world id
default to the selected world.`,
	}
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "path to the world store (required)")
	_ = cmd.MarkPersistentFlagRequired("store")

	cmd.AddCommand(newWorldsListCommand(opts))
	cmd.AddCommand(newWorldsCreateCommand(opts))
	cmd.AddCommand(newWorldsShowCommand(opts))
	cmd.AddCommand(newWorldsSelectCommand(opts))
	cmd.AddCommand(newWorldsDeleteCommand(opts))
	cmd.AddCommand(newWorldsExportCommand(opts))
	cmd.AddCommand(newWorldsImportCommand(opts))
	return cmd
}

// openWorldStore opens the store named by --store.
func openWorldStore(opts *WorldsOptions) (*store.Store, error) {
	s, err := store.Open(opts.StorePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "unable to open store", err)
	}
	return s, nil
}

// resolveWorldID parses an id argument, or falls back to the
// selected world when the argument is absent.
func resolveWorldID(ctx context.Context, s *store.Store, args []string) (world.ID, error) {
	if len(args) > 0 {
		id, err := world.ParseID(args[0])
		if err != nil {
			return world.ID{}, WrapExitError(ExitCommandError, fmt.Sprintf("invalid world id %q", args[0]), err)
		}
		return id, nil
	}
	id, ok, err := s.Selected(ctx)
	if err != nil {
		return world.ID{}, WrapExitError(ExitCommandError, "unable to read the selected world", err)
	}
	if !ok {
		return world.ID{}, NewExitError(ExitCommandError, "no world selected; pass an id or run worlds select")
	}
	return id, nil
}

func newWorldsListCommand(opts *WorldsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List saved worlds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsList(opts, cmd)
		},
	}
}

// worldListing is one row of the list output.
type worldListing struct {
	world.Metadata
	Selected bool `json:"selected,omitempty"`
}

func runWorldsList(opts *WorldsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	s, err := openWorldStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	worlds, err := s.ListWorlds(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to list worlds", err)
	}
	selected, _, err := s.Selected(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to read the selected world", err)
	}

	listings := make([]worldListing, len(worlds))
	for i, meta := range worlds {
		listings[i] = worldListing{Metadata: meta, Selected: meta.ID == selected}
	}
	if opts.Format == "json" {
		return formatter.Success(listings)
	}

	var b strings.Builder
	for _, listing := range listings {
		marker := " "
		if listing.Selected {
			marker = "*"
		}
		name := listing.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&b, "%s %s  %-24s %s\n", marker, listing.ID, name, listing.Version)
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}

func newWorldsCreateCommand(opts *WorldsOptions) *cobra.Command {
	var (
		planPath string
		name     string
	)
	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a world and select it",
		Long:          "Create a world, either empty or compiled from a plan file, save it\nin the store, and select it.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsCreate(opts, planPath, name, cmd)
		},
	}
	cmd.Flags().StringVar(&planPath, "plan", "", "compile the world from this plan file")
	cmd.Flags().StringVar(&name, "name", "", "name of the world (overrides the plan's name)")
	return cmd
}

func runWorldsCreate(opts *WorldsOptions, planPath, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	w := world.New()
	if planPath != "" {
		var err error
		if w, err = buildPlan(planPath); err != nil {
			return err
		}
	}
	if name != "" {
		g, ok := w.Root.Group()
		if !ok {
			return NewExitError(ExitCommandError, "world root is not a group")
		}
		g.Name = name
		w.Root = accounting.NewGroupNode(g)
	}

	s, err := openWorldStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	id := world.NewID()
	if err := s.SaveWorld(ctx, id, w); err != nil {
		return WrapExitError(ExitCommandError, "unable to save world", err)
	}
	if err := s.SetSelected(ctx, id); err != nil {
		return WrapExitError(ExitCommandError, "unable to select world", err)
	}

	meta := w.Metadata(id)
	if opts.Format == "json" {
		return formatter.Success(meta)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created world %s\n", id)
	return nil
}

func newWorldsShowCommand(opts *WorldsOptions) *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:           "show [id]",
		Short:         "Report the balance of a saved world",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsShow(opts, locale, args, cmd)
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "en", "locale for number formatting")
	return cmd
}

func runWorldsShow(opts *WorldsOptions, locale string, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	s, err := openWorldStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := resolveWorldID(ctx, s, args)
	if err != nil {
		return err
	}
	w, err := s.LoadWorld(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to load world", err)
	}
	db, err := w.PostLoad()
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to load the world's database", err)
	}
	return writeReport(formatter, report.ForWorld(w, db), locale)
}

func newWorldsSelectCommand(opts *WorldsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "select <id>",
		Short:         "Select the world other commands default to",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsSelect(opts, args, cmd)
		},
	}
}

func runWorldsSelect(opts *WorldsOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	id, err := world.ParseID(args[0])
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid world id %q", args[0]), err)
	}

	s, err := openWorldStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SetSelected(ctx, id); err != nil {
		return WrapExitError(ExitCommandError, "unable to select world", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "selected world %s\n", id)
	return nil
}

func newWorldsDeleteCommand(opts *WorldsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a saved world",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsDelete(opts, args, cmd)
		},
	}
}

func runWorldsDelete(opts *WorldsOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	id, err := world.ParseID(args[0])
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid world id %q", args[0]), err)
	}

	s, err := openWorldStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteWorld(ctx, id); err != nil {
		return WrapExitError(ExitCommandError, "unable to delete world", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted world %s\n", id)
	return nil
}

func newWorldsExportCommand(opts *WorldsOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:           "export [id]",
		Short:         "Write a world's save file to stdout or a file",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsExport(opts, out, args, cmd)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the save file here instead of stdout")
	return cmd
}

func runWorldsExport(opts *WorldsOptions, out string, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	s, err := openWorldStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := resolveWorldID(ctx, s, args)
	if err != nil {
		return err
	}
	w, err := s.LoadWorld(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to load world", err)
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to encode save file", err)
	}
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "unable to write save file", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported world %s to %s\n", id, out)
	return nil
}

func newWorldsImportCommand(opts *WorldsOptions) *cobra.Command {
	var selectIt bool
	cmd := &cobra.Command{
		Use:           "import <save.json>",
		Short:         "Import a save file as a new world",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsImport(opts, selectIt, args[0], cmd)
		},
	}
	cmd.Flags().BoolVar(&selectIt, "select", false, "select the imported world")
	return cmd
}

func runWorldsImport(opts *WorldsOptions, selectIt bool, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to read save file", err)
	}
	var w world.World
	if err := json.Unmarshal(data, &w); err != nil {
		return WrapExitError(ExitFailure, "unable to decode save file", err)
	}
	// Rebuild against the declared database so a tampered or stale
	// file degrades to warnings instead of importing wrong balances.
	if _, err := w.PostLoad(); err != nil {
		return WrapExitError(ExitFailure, "unable to load the save file's database", err)
	}

	s, err := openWorldStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	id := world.NewID()
	if err := s.SaveWorld(ctx, id, &w); err != nil {
		return WrapExitError(ExitCommandError, "unable to save world", err)
	}
	if selectIt {
		if err := s.SetSelected(ctx, id); err != nil {
			return WrapExitError(ExitCommandError, "unable to select world", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(w.Metadata(id))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported world %s\n", id)
	return nil
}
