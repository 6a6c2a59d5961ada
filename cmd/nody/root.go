package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nody",
	Short: "Nody is a node-graph traversal engine",
	Long:  `Nody loads graphs of connected nodes (with sub graphs and switch backs) and walks them tick by tick.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the Nody project")
	rootCmd.PersistentFlags().String("config", "", "Path to a nody.yaml or nody.toml file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// projectDir honours --dir, falling back to the first positional argument.
func projectDir(cmd *cobra.Command, args []string) string {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}
	return dir
}
