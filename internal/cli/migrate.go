package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/modelkit/internal/session"
)

// Migration versions understood by every entity type.
const (
	VersionDropped uint = 0
	VersionCreated uint = 1
)

// MigrateResult reports the models a migrate or drop command touched.
type MigrateResult struct {
	Version uint     `json:"version"`
	Models  []string `json:"models"`
}

func (r MigrateResult) String() string {
	verb := "Created"
	if r.Version == VersionDropped {
		verb = "Dropped"
	}
	if len(r.Models) == 0 {
		return "No models registered"
	}
	return fmt.Sprintf("%s tables for %d model(s): %s", verb, len(r.Models), strings.Join(r.Models, ", "))
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions, register Registrar) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [model...]",
		Short: "Create the tables of registered models",
		Long: `Migrate every named model to version 1, creating its table if missing.
With no arguments, every registered model is migrated.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Let main.go handle error printing
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(rootOpts, register, cmd, args, VersionCreated)
		},
	}
}

// NewDropCommand creates the drop command.
func NewDropCommand(rootOpts *RootOptions, register Registrar) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "drop [model...]",
		Short: "Drop the tables of registered models",
		Long: `Migrate every named model to version 0, dropping its table.
Dropping every registered model requires --all.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return NewExitError(ExitCommandError, "drop: name the models to drop or pass --all")
			}
			return runMigrations(rootOpts, register, cmd, args, VersionDropped)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "drop every registered model")
	return cmd
}

func runMigrations(rootOpts *RootOptions, register Registrar, cmd *cobra.Command, names []string, version uint) error {
	env, err := openEnvironment(rootOpts, register, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	if len(names) == 0 {
		names = env.reg.Migrations()
	}

	// Stop between models on Ctrl+C; a statement already sent still completes.
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make([]string, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return env.formatter.Fail(ExitFailure, ErrCodeMigrate, "migration interrupted", err)
		}

		slog.Info("migrating", "model", name, "version", version)
		if err := env.reg.Migrate(ctx, name, version); err != nil {
			if errors.Is(err, session.ErrUnknownModel) {
				return env.formatter.Fail(ExitCommandError, ErrCodeUnknownModel,
					fmt.Sprintf("unknown model %q (registered: %s)", name, strings.Join(env.reg.Migrations(), ", ")), err)
			}
			return env.formatter.Fail(ExitFailure, ErrCodeMigrate, "migration failed", err)
		}
		done = append(done, name)
	}

	return env.formatter.Success(MigrateResult{Version: version, Models: done})
}

// commandContext returns cmd's context, or Background before Execute sets one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
