package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nody/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Run a graph",
	Long: `Starts a controller over the graph and drives it from the terminal.

Without a terminal on stdin the run is headless: the graph is ticked on the
configured interval and the final status is printed as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		graphID, _ := cmd.Flags().GetString("graph")
		headless, _ := cmd.Flags().GetBool("headless")
		watchMode, _ := cmd.Flags().GetBool("watch")
		trace, _ := cmd.Flags().GetBool("trace")
		ticks, _ := cmd.Flags().GetInt("ticks")

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if !cmd.Flags().Changed("headless") && !interactive {
			headless = true
		}

		err := cli.Execute(cli.RunOptions{
			Dir:        projectDir(cmd, args),
			ConfigPath: configPath,
			GraphID:    graphID,
			Headless:   headless,
			Watch:      watchMode,
			Trace:      trace,
			Debug:      debug,
			Ticks:      ticks,
			Color:      term.IsTerminal(int(os.Stdout.Fd())),
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("graph", "g", "", "Graph id to run (default: start, main, index or the directory name)")
	runCmd.Flags().Bool("headless", false, "Run without prompts, ticking on the configured interval")
	runCmd.Flags().BoolP("watch", "w", false, "Reload the graph when its documents change")
	runCmd.Flags().BoolP("trace", "t", false, "Print every node activation")
	runCmd.Flags().Int("ticks", 0, "Stop a headless run after this many ticks")

	rootCmd.Run = runCmd.Run
}
