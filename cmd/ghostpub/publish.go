package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish a Markdown document to Ghost",
	Long: `Publish creates the post on first run and updates it afterwards. On
success the document records ghostPostId, publishedUrl and publishedDate
and moves into the published folder.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)

		res, err := ws.Publish(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}

		verb := "Updated"
		if res.Created {
			verb = "Published"
		}
		fmt.Printf("%s %s\n", verb, res.URL)
		if res.Path != res.SourcePath {
			fmt.Printf("Moved to %s\n", res.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
