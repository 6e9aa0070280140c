package cli

import (
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Off-chain document operations",
}

var documentStoreCmd = &cobra.Command{
	Use:   "store <path>",
	Short: "Upload a canonical document and print its fingerprint and locator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := client().StoreDocument(args[0])
		if err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var documentURLCmd = &cobra.Command{
	Use:   "url <fingerprint>",
	Short: "Print a time-limited download URL for a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := client().DocumentURL(args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"url": u})
	},
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.AddCommand(documentStoreCmd)
	documentCmd.AddCommand(documentURLCmd)
}
