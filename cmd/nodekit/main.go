package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "nodekit",
		Short:         "Run component lifecycle scenarios against a node world",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default $NODEKIT_CONFIG or config/nodekit.toml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run [scenario.lua]",
			Short: "Load prefabs, run a scenario script and tick the world",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				scenario := ""
				if len(args) == 1 {
					scenario = args[0]
				}
				return run(resolveConfigPath(cfgPath), scenario)
			},
		},
		&cobra.Command{
			Use:   "prefabs",
			Short: "List the prefabs and component types available to scenarios",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return listPrefabs(cmd.OutOrStdout(), resolveConfigPath(cfgPath))
			},
		},
	)
	return root
}

func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv("NODEKIT_CONFIG"); p != "" {
		return p
	}
	return "config/nodekit.toml"
}
