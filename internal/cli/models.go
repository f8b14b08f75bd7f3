package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// ModelList is the output of the models command.
type ModelList struct {
	Models []string `json:"models"`
}

func (l ModelList) String() string {
	if len(l.Models) == 0 {
		return "No models registered"
	}
	return strings.Join(l.Models, "\n")
}

// NewModelsCommand creates the models command.
func NewModelsCommand(rootOpts *RootOptions, register Registrar) *cobra.Command {
	return &cobra.Command{
		Use:           "models",
		Short:         "List registered models",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(rootOpts, register, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			return env.formatter.Success(ModelList{Models: env.reg.Migrations()})
		},
	}
}
