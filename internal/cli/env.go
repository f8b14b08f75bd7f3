package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/modelkit/internal/config"
	"github.com/roach88/modelkit/internal/session"
)

// environment is an opened registry with every entity type registered.
type environment struct {
	cfg       *config.Config
	reg       *session.Registry
	formatter *OutputFormatter
}

// openEnvironment loads the config, installs the logger and opens every
// pool. The caller must call close.
func openEnvironment(opts *RootOptions, register Registrar, cmd *cobra.Command) (*environment, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	logger, err := cfg.NewLogger(formatter.Diagnostics(), opts.Verbose)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to configure logging", err)
	}
	slog.SetDefault(logger)

	slog.Info("opening database", "dsn_backend", backendOf(cfg.DSN), "threads", cfg.Threads)
	reg, err := cfg.Open()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConnect, "failed to open database", err)
	}

	if register != nil {
		if err := register(reg, cfg); err != nil {
			_ = reg.Close()
			return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to register models", err)
		}
	}
	slog.Info("database ready", "models", len(reg.Migrations()))

	return &environment{cfg: cfg, reg: reg, formatter: formatter}, nil
}

func (e *environment) close() {
	if err := e.reg.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// backendOf returns the DSN scheme without credentials.
func backendOf(dsn string) string {
	backend, _, err := session.ParseDSN(dsn)
	if err != nil {
		return "unknown"
	}
	return backend.Name()
}
