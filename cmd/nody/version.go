package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/nody"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nody",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nody version %s\n", strings.TrimSpace(nody.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
