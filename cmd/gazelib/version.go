package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gazelib/gazelib"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gazelib",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gazelib version %s\n", strings.TrimSpace(gazelib.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
