package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/modelkit/internal/config"
	"github.com/roach88/modelkit/internal/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultConfigPath is used when -f is not given.
const DefaultConfigPath = "modelkit.yaml"

// Registrar registers entity types with an opened registry.
type Registrar func(reg *session.Registry, cfg *config.Config) error

// NewRootCommand creates the root command for the modelkit CLI.
// register is called once the registry is open, before any subcommand runs.
func NewRootCommand(register Registrar) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "modelkit",
		Short: "modelkit - schema-driven active records",
		Long: `Manage the tables behind modelkit entity types.

Connection pools are read from a YAML config file. Every registered entity
type can be migrated by name: version 1 creates its table, version 0 drops it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output, including SQL")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "f", DefaultConfigPath, "path to the config file")

	// Add subcommands
	cmd.AddCommand(NewMigrateCommand(opts, register))
	cmd.AddCommand(NewDropCommand(opts, register))
	cmd.AddCommand(NewModelsCommand(opts, register))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
