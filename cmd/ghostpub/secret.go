package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/ghostpub/pkg/adapters/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage secrets stored in the vault",
}

var secretSetCmd = &cobra.Command{
	Use:   "set <name> [value]",
	Short: "Store a secret (reads the value from stdin when omitted)",
	Long: `Store a secret in the vault's secrets file. Secrets can also be provided
through the environment, e.g. GHOSTPUB_SECRET_GHOST_ADMIN_API_KEY, which
takes precedence over the file.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		if ws.SecretFile == nil {
			fatal("Failed to store secret", fmt.Errorf("no writable secrets file"))
		}

		value := ""
		if len(args) == 2 {
			value = args[1]
		} else {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				fatal("Failed to read secret from stdin", err)
			}
			value = line
		}
		value = strings.TrimSpace(value)

		if err := ws.SecretFile.SetSecret(cmd.Context(), args[0], value); err != nil {
			fatal("Failed to store secret", err)
		}
		if value == "" {
			fmt.Printf("Removed %s\n", args[0])
			return
		}
		fmt.Printf("Stored %s (override with %s)\n", args[0], secrets.EnvKey(args[0]))
	},
}

var secretListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored secret names",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		if ws.SecretFile == nil {
			return
		}
		names, err := ws.SecretFile.Names()
		if err != nil {
			fatal("Failed to read secrets", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretListCmd)
}
