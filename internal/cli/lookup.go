package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/gamedb"
)

// LookupOptions holds flags for the database listing commands.
type LookupOptions struct {
	*RootOptions
	Database string
}

// loadDatabase resolves the --db flag into a loaded database. An
// empty value loads the latest version.
func loadDatabase(version string) (*gamedb.Database, error) {
	if version == "" {
		return gamedb.LoadLatest()
	}
	db, err := gamedb.LoadVersion(gamedb.VersionID(version))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "unable to load database", err)
	}
	return db, nil
}

// addDatabaseFlag registers the shared --db flag.
func addDatabaseFlag(cmd *cobra.Command, opts *LookupOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "database version (defaults to the latest)")
}

// NewItemsCommand creates the items command.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "items",
		Short:         "List the items of a database version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItems(opts, cmd)
		},
	}
	addDatabaseFlag(cmd, opts)
	return cmd
}

func runItems(opts *LookupOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	db, err := loadDatabase(opts.Database)
	if err != nil {
		return err
	}
	items := db.Items()
	if opts.Format == "json" {
		return formatter.Success(items)
	}

	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%-36s %s", item.ID, item.Name)
		if item.Fuel != nil {
			fmt.Fprintf(&b, " (fuel, %.0f MJ)", item.Fuel.Energy)
		}
		b.WriteString("\n")
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}

// NewRecipesCommand creates the recipes command.
func NewRecipesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "recipes",
		Short:         "List the recipes of a database version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipes(opts, cmd)
		},
	}
	addDatabaseFlag(cmd, opts)
	return cmd
}

func runRecipes(opts *LookupOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	db, err := loadDatabase(opts.Database)
	if err != nil {
		return err
	}
	recipes := db.Recipes()
	if opts.Format == "json" {
		return formatter.Success(recipes)
	}

	var b strings.Builder
	for _, recipe := range recipes {
		fmt.Fprintf(&b, "%-36s %s", recipe.ID, recipe.Name)
		if recipe.IsAlternate {
			b.WriteString(" (alternate)")
		}
		b.WriteString("\n")
		if opts.Verbose {
			fmt.Fprintf(&b, "    %s -> %s in %.0fs\n",
				amountList(recipe.Ingredients), amountList(recipe.Products), recipe.Time)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}

// amountList formats item amounts as "2 Desc_OreIron_C + 1 Desc_Water_C".
func amountList(amounts []gamedb.ItemAmount) string {
	if len(amounts) == 0 {
		return "nothing"
	}
	parts := make([]string, len(amounts))
	for i, amount := range amounts {
		parts[i] = fmt.Sprintf("%g %s", amount.Amount, amount.Item)
	}
	return strings.Join(parts, " + ")
}

// NewBuildingsCommand creates the buildings command.
func NewBuildingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "buildings",
		Short:         "List the building types of a database version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildings(opts, cmd)
		},
	}
	addDatabaseFlag(cmd, opts)
	return cmd
}

func runBuildings(opts *LookupOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	db, err := loadDatabase(opts.Database)
	if err != nil {
		return err
	}
	buildings := db.Buildings()
	if opts.Format == "json" {
		return formatter.Success(buildings)
	}

	var b strings.Builder
	for _, bt := range buildings {
		kind := "unknown"
		if bt.Kind != nil {
			kind = string(bt.Kind.KindID())
		}
		fmt.Fprintf(&b, "%-36s %-18s %s\n", bt.ID, kind, bt.Name)
		if opts.Verbose && bt.Description != "" {
			fmt.Fprintf(&b, "    %s\n", bt.Description)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}
