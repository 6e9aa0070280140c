package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var fulfillCmd = &cobra.Command{
	Use:   "fulfill <prescription-id>",
	Short: "Record a fulfillment for a prescription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dispenser, _ := cmd.Flags().GetString("dispenser")
		if dispenser == "" {
			return errors.New("dispenser is required")
		}
		entry, err := client().Fulfill(args[0], dispenser)
		if err != nil {
			return err
		}
		return printJSON(entry)
	},
}

var hasFulfilledCmd = &cobra.Command{
	Use:   "has-fulfilled <prescription-id> <party>",
	Short: "Check whether a party already fulfilled a prescription",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := client().HasFulfilled(args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"prescription_id": args[0],
			"party":           args[1],
			"fulfilled":       ok,
		})
	},
}

func init() {
	rootCmd.AddCommand(fulfillCmd)
	rootCmd.AddCommand(hasFulfilledCmd)
	fulfillCmd.Flags().String("dispenser", "", "Dispensing party identity (required)")
}
