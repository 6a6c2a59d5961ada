package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nody/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the configured controllers as an MCP Server.
This allows AI agents to inspect and drive controllers as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		autoTick, _ := cmd.Flags().GetBool("tick")

		err := cli.ServeMCP(cli.MCPOptions{
			Dir:        projectDir(cmd, args),
			ConfigPath: configPath,
			Transport:  transport,
			Port:       port,
			Debug:      debug,
			AutoTick:   autoTick,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "MCP server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Bool("tick", false, "Tick the controllers on the configured interval")
}
