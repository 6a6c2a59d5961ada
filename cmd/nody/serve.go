package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nody/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the HTTP server",
	Long: `Starts the configured controllers and exposes them over a JSON API,
with Server-Sent Events for traversal and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		addr, _ := cmd.Flags().GetString("addr")
		autoTick, _ := cmd.Flags().GetBool("tick")

		err := cli.Serve(cli.ServeOptions{
			Dir:        projectDir(cmd, args),
			ConfigPath: configPath,
			Addr:       addr,
			Debug:      debug,
			AutoTick:   autoTick,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().Bool("tick", false, "Tick the controllers on the configured interval")
}
