package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/nody/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the graph visualization",
	Long:  `Generates a Mermaid flowchart of the graph, sub graphs included.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Graph(context.Background(), inspectOptions(cmd, args), os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe [dir]",
	Short: "Describe the nodes and connections of the graph",
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Describe(context.Background(), inspectOptions(cmd, args), os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("graph", "g", "", "Graph id to export")

	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringP("graph", "g", "", "Graph id to describe")
	describeCmd.Flags().Bool("markdown", false, "Print raw Markdown instead of rendering it")
}
