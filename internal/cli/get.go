package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <prescription-id>",
	Short: "Fetch a prescription record with its fulfillment log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := client().GetDetails(args[0])
		if err != nil {
			return err
		}
		return printJSON(rec)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List prescription IDs by recipient or by issuer",
	Example: `  rxcli list --recipient patient-7
  rxcli list --issuer dr-house`,
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, _ := cmd.Flags().GetString("recipient")
		issuer, _ := cmd.Flags().GetString("issuer")
		if (recipient == "") == (issuer == "") {
			return errors.New("exactly one of recipient or issuer is required")
		}
		res, err := client().List(recipient, issuer)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("recipient", "", "Recipient identity")
	listCmd.Flags().String("issuer", "", "Issuer identity")
}
