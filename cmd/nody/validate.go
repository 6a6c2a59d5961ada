package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/nody/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the graph for consistency",
	Long:  `Compiles the graph with every referenced sub graph and reports structural errors and unreachable nodes.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Validate(context.Background(), inspectOptions(cmd, args), os.Stdout); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("graph", "g", "", "Graph id to validate")
	validateCmd.Flags().Bool("strict", false, "Fail on sub graph references that cannot be loaded")
}

func inspectOptions(cmd *cobra.Command, args []string) cli.InspectOptions {
	configPath, _ := cmd.Flags().GetString("config")
	graphID, _ := cmd.Flags().GetString("graph")
	strict, _ := cmd.Flags().GetBool("strict")
	markdown, _ := cmd.Flags().GetBool("markdown")
	return cli.InspectOptions{
		Dir:        projectDir(cmd, args),
		ConfigPath: configPath,
		GraphID:    graphID,
		Strict:     strict,
		Markdown:   markdown,
	}
}
