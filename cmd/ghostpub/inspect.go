package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/ghostpub/pkg/adapters/fs"
	"github.com/aretw0/ghostpub/pkg/publish"
)

var inspectTree bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the internal state of the vault and publisher",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)

		// List once so the index figures are populated.
		if _, err := ws.List(cmd.Context()); err != nil {
			fatal("Error indexing vault", err)
		}

		state := map[string]any{}
		for _, c := range ws.Components() {
			name := fmt.Sprintf("%T", c)
			if comp, ok := c.(introspection.Component); ok {
				name = comp.ComponentType()
			}
			state[name] = c.State()
		}

		if inspectTree {
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "workspace"
			config.SecondaryLabel = "Workspace"
			fmt.Println(introspection.TreeDiagram(buildTree(ws.Root, state), config))
			return
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(state); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

type stateNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []stateNode
}

// buildTree lays out the component states as a diagram. Status values must
// match introspection.DefaultStyles().
func buildTree(root string, state map[string]any) stateNode {
	node := stateNode{
		Name:     "Workspace",
		Status:   "running",
		Metadata: map[string]string{"type": "container", "path": root},
	}

	if v, ok := state["vault"].(fs.VaultState); ok {
		watcher := "suspended"
		if v.Watchers > 0 {
			watcher = "running"
		}
		node.Children = append(node.Children, stateNode{
			Name:   "Vault",
			Status: "running",
			Metadata: map[string]string{
				"type":  "process",
				"index": fmt.Sprintf("%d", v.IndexSize),
			},
			Children: []stateNode{
				{Name: "Watcher", Status: watcher, Metadata: map[string]string{"type": "goroutine"}},
			},
		})
	}

	if p, ok := state["publisher"].(publish.PublisherState); ok {
		status := "created"
		meta := map[string]string{
			"type":     "process",
			"runs":     fmt.Sprintf("%d", p.Runs),
			"failures": fmt.Sprintf("%d", p.Failures),
		}
		if last := p.LastRun; last != nil {
			status = "finished"
			if last.Stage == publish.StageFailed {
				status = "failed"
			}
			meta["last"] = last.Path
		}
		node.Children = append(node.Children, stateNode{Name: "Publisher", Status: status, Metadata: meta})
	}

	return node
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectTree, "tree", false, "Print a Mermaid diagram instead of JSON")
}
