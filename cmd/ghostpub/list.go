package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/ghostpub/pkg/core"
)

var (
	listJSON      bool
	listMatch     string
	listPublished bool
	listDrafts    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in the writing folder with their publish state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if listMatch != "" && !doublestar.ValidatePattern(listMatch) {
			fatal("Invalid --match pattern", fmt.Errorf("%q", listMatch))
		}

		ws := openWorkspace(cmd)
		entries, err := ws.List(cmd.Context())
		if err != nil {
			fatal("Error listing documents", err)
		}

		var filtered []core.Entry
		for _, e := range entries {
			if listMatch != "" {
				if ok, _ := doublestar.Match(listMatch, e.Path); !ok {
					continue
				}
			}
			if listPublished && !e.Record.Published() {
				continue
			}
			if listDrafts && e.Record.Published() {
				continue
			}
			filtered = append(filtered, e)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, e := range filtered {
			state := "draft    "
			if e.Record.Published() {
				state = "published"
			}
			fmt.Printf("%s  %s - %s\n", state, e.Path, e.Record.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Only paths matching this glob (e.g. writing/**/2024-*.md)")
	listCmd.Flags().BoolVar(&listPublished, "published", false, "Only published documents")
	listCmd.Flags().BoolVar(&listDrafts, "drafts", false, "Only drafts")
}
