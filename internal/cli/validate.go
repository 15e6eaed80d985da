package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/gamedb"
)

// ValidationResult holds the outcome of validating a database file.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []gamedb.ValidationError `json:"errors,omitempty"`
}

// NewValidateDBCommand creates the validate-db command.
func NewValidateDBCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-db <database.json>",
		Short: "Validate a custom game database file",
		Long: `Validate a custom game database file against the database schema and
cross-check every item, recipe, and building reference in it.

All problems are reported, not just the first. A database that
validates can be carried in a world save file as a custom database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateDB(rootOpts, args[0], cmd)
		},
	}
}

func runValidateDB(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to read database file", err)
	}
	formatter.VerboseLog("validating %s (%d bytes)", path, len(data))

	errs := gamedb.ValidateDatabase(data)
	if len(errs) == 0 {
		if opts.Format == "json" {
			return formatter.Success(ValidationResult{Valid: true})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database is valid")
		return nil
	}

	if opts.Format == "json" {
		if err := formatter.Error(ErrCodeDatabase, "database is invalid",
			ValidationResult{Valid: false, Errors: errs}); err != nil {
			return err
		}
	} else {
		for _, verr := range errs {
			fmt.Fprintln(cmd.OutOrStdout(), verr.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("database is invalid: %d problems found", len(errs)))
}
