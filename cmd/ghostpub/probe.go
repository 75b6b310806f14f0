package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the configured Ghost site is reachable",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)

		site, err := ws.Probe(cmd.Context())
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s (Ghost %s) at %s\n", site.Title, site.Version, ws.Settings.BaseURL())
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
