// Package cli implements the rxcli command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rxledger/internal/cli/api"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "rxcli",
	Short: "Prescription registry CLI",
	Long:  "A command-line tool for issuing, fulfilling and verifying prescriptions against a registry node.",
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Registry API base URL (default $RXLEDGER_API or http://localhost:8080)")
}

func client() *api.Client {
	return api.New(serverURL)
}

// printJSON renders command output as indented JSON, which keeps the CLI
// pipeable into jq.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
