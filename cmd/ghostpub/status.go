package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status <file>",
	Short: "Show the publish record of a document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)

		entry, err := ws.Status(cmd.Context(), args[0])
		if err != nil {
			fatal("Failed to read document", err)
		}

		if statusJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(entry); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		r := entry.Record
		fmt.Printf("Path:      %s\n", entry.Path)
		fmt.Printf("Title:     %s\n", r.Title)
		if !r.Published() {
			fmt.Println("Status:    draft")
			return
		}
		fmt.Println("Status:    published")
		fmt.Printf("Post ID:   %s\n", r.PostID)
		fmt.Printf("URL:       %s\n", r.PublishedURL)
		fmt.Printf("Published: %s\n", r.PublishedDate)
		if len(r.Tags) > 0 {
			fmt.Printf("Tags:      %s\n", strings.Join(r.Tags, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}
