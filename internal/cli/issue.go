package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Register a new prescription record",
	Example: `  rxcli issue --issuer dr-house --recipient patient-7 \
    --fingerprint 0x7f83b165... --locator prescriptions/7f83b165... \
    --expires-in 168h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		issuer, _ := cmd.Flags().GetString("issuer")
		recipient, _ := cmd.Flags().GetString("recipient")
		fp, _ := cmd.Flags().GetString("fingerprint")
		locator, _ := cmd.Flags().GetString("locator")
		document, _ := cmd.Flags().GetString("document")
		expiresIn, _ := cmd.Flags().GetDuration("expires-in")

		if issuer == "" || recipient == "" {
			return errors.New("issuer and recipient are required")
		}
		if expiresIn <= 0 {
			return errors.New("expires-in must be a positive duration")
		}

		c := client()

		// --document uploads the file first and derives fingerprint and
		// locator from the stored copy.
		if document != "" {
			if fp != "" || locator != "" {
				return errors.New("document cannot be combined with fingerprint or locator")
			}
			doc, err := c.StoreDocument(document)
			if err != nil {
				return err
			}
			fp = doc.Fingerprint
			locator = doc.Locator
		}
		if fp == "" || locator == "" {
			return errors.New("fingerprint and locator are required unless document is given")
		}

		res, err := c.Issue(issuer, recipient, fp, locator, time.Now().Add(expiresIn))
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.Flags().String("issuer", "", "Issuer identity (required)")
	issueCmd.Flags().String("recipient", "", "Recipient identity (required)")
	issueCmd.Flags().String("fingerprint", "", "Content fingerprint of the canonical document")
	issueCmd.Flags().String("locator", "", "Off-chain locator of the canonical document")
	issueCmd.Flags().String("document", "", "Path to the canonical document; uploads it and derives fingerprint and locator")
	issueCmd.Flags().Duration("expires-in", 168*time.Hour, "Validity window from now")
}
