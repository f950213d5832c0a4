package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arenacore/arena/internal/mapschema"
)

var validateMapCmd = &cobra.Command{
	Use:   "validate-map [file]",
	Args:  cobra.ExactArgs(1),
	Short: "Validate a map config file without starting the simulation",
	RunE:  validateMap,
}

func validateMap(cmd *cobra.Command, args []string) error {
	cfg, err := mapschema.LoadMapConfigFile(args[0])
	if err != nil {
		return errors.Wrap(err, "load map config")
	}

	result := mapschema.Validate(cfg)
	if result.Valid {
		fmt.Printf("%s is valid\n", args[0])
		return nil
	}

	fmt.Printf("%s is invalid:\n", args[0])
	for _, reason := range result.Errors {
		fmt.Printf("  - %s\n", reason)
	}
	return fmt.Errorf("map validation failed with %d error(s)", len(result.Errors))
}
