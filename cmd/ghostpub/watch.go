package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/ghostpub"
	adapter "github.com/aretw0/ghostpub/pkg/adapters/lifecycle"
	"github.com/aretw0/ghostpub/pkg/core"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Republish a document whenever it changes",
	Long: `Watch republishes the document each time it is saved. It follows the
document into the published folder and ignores the rewrites it makes itself.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)

		current, err := ws.Rel(args[0])
		if err != nil {
			fatal("Invalid document path", err)
		}
		watcher, ok := ws.Watcher()
		if !ok {
			fatal("Cannot watch", fmt.Errorf("vault does not support watching"))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var folders []string
		if core.IsUnder(current, ws.Settings.WritingFolder) {
			folders = append(folders, ws.Settings.WritingFolder)
		}
		src := adapter.NewSource(watcher, folders...)
		if err := src.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		w := &docWatch{ws: ws, path: current}
		if watchInitial {
			w.publish(ctx)
		} else {
			w.last, _ = ws.Vault.ReadText(ctx, current)
		}

		slog.Info("watching", "path", current)
		for e := range src.Events() {
			change, ok := e.(core.ChangeEvent)
			if !ok || change.Path != w.path || change.Type == core.ChangeRemove {
				continue
			}
			w.onChange(ctx)
		}
		slog.Info("watch stopped")
	},
}

// docWatch tracks one document across republishes.
type docWatch struct {
	ws   *ghostpub.Workspace
	path string
	// last is the content after our own most recent write.
	last string
}

func (w *docWatch) onChange(ctx context.Context) {
	content, err := w.ws.Vault.ReadText(ctx, w.path)
	if err != nil {
		slog.Debug("document unreadable", "path", w.path, "error", err)
		return
	}
	if content == w.last {
		return
	}
	w.publish(ctx)
}

func (w *docWatch) publish(ctx context.Context) {
	res, err := w.ws.Publish(ctx, w.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %s\n", core.KindOf(err), core.Summary(err))
		w.last, _ = w.ws.Vault.ReadText(ctx, w.path)
		return
	}
	w.path = res.Path
	w.last, _ = w.ws.Vault.ReadText(ctx, w.path)
	fmt.Printf("Republished %s -> %s\n", w.path, res.URL)
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchInitial, "now", false, "Publish once before waiting for changes")
}
