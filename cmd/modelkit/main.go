// Command modelkit manages the tables of the shipped entity types.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/modelkit/internal/cli"
	"github.com/roach88/modelkit/internal/config"
	"github.com/roach88/modelkit/internal/models"
	"github.com/roach88/modelkit/internal/session"
)

func main() {
	root := cli.NewRootCommand(register)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "modelkit:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func register(reg *session.Registry, cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	_, err = models.Register(reg, loc)
	return err
}
