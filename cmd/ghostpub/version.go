package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/ghostpub"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ghostpub",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ghostpub version %s\n", strings.TrimSpace(ghostpub.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
