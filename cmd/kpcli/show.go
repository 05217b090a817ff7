package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// showCmd prints an entry's fields with the password masked.
var showCmd = &cobra.Command{
	Use:   "show [database] [entry]",
	Short: "Show an entry's fields with the password masked",
	Long: `Show all fields of an entry. The password value is replaced by a
fixed-width mask; use 'kpcli get' to retrieve the real value.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		browser, cleanup, err := openBrowser(args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		details, err := browser.GetEntryDetails(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		fmt.Print(details)
		return nil
	},
}
