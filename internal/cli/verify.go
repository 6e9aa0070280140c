package cli

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <scan-payload>",
	Short: "Verify a scanned prescription code",
	Long:  "Submits a scanned payload (\"<claimed>|<carried>\") and prints the verdict: valid, not_found, content_mismatch or expired.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verdict, err := client().Verify(args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"verdict": verdict})
	},
}

var scanPayloadCmd = &cobra.Command{
	Use:   "scan-payload <prescription-id>",
	Short: "Print the QR payload for a prescription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := client().ScanPayload(args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"payload": payload})
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(scanPayloadCmd)
}
