package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/ghostpub"
)

var (
	verbose   bool
	vaultPath string
	overrides ghostpub.Settings
	commit    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ghostpub",
	Short: "Publish Markdown notes to a Ghost blog",
	Long: `ghostpub publishes Markdown documents from a local vault to Ghost.
Images are uploaded, wiki links are rewritten to published URLs, and the
document records its post ID and moves into the published folder.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// openWorkspace opens the vault selected by --vault, or the nearest one
// above the working directory.
func openWorkspace(cmd *cobra.Command) *ghostpub.Workspace {
	root := vaultPath
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}
		if found, err := ghostpub.FindVaultRoot(cwd); err == nil {
			root = found
		} else {
			root = cwd
		}
	}

	opts := []ghostpub.Option{
		ghostpub.WithLogger(slog.Default()),
		ghostpub.WithOverrides(overrides),
	}
	if cmd.Flags().Changed("commit") {
		opts = append(opts, ghostpub.WithVersioning(commit))
	}

	ws, err := ghostpub.New(root, opts...)
	if err != nil {
		fatal("Failed to open vault", err)
	}
	return ws
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&vaultPath, "vault", "", "Vault root (default: nearest vault above the working directory)")
	flags.StringVar(&overrides.BlogURL, "blog-url", "", "Ghost site URL, e.g. https://myblog.com")
	flags.StringVar(&overrides.APIKeyName, "api-key-name", "", "Name of the secret holding the Admin API key")
	flags.StringVar(&overrides.WritingFolder, "writing-folder", "", "Folder holding drafts and published posts")
	flags.StringVar(&overrides.PublishedFolder, "published-folder", "", "Subfolder of the writing folder for published posts")
	flags.BoolVar(&commit, "commit", false, "Commit the published document to Git")
}
