package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// getCmd prints one field value raw, for piping into other tools.
var getCmd = &cobra.Command{
	Use:   "get [database] [entry] [field]",
	Short: "Get one field of an entry",
	Long: `Print the raw value of a single field (Password, UserName, URL, ...)
to standard output.

An absent field prints an empty line: the vault tool's text output cannot
distinguish an unset field from a missing one.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		browser, cleanup, err := openBrowser(args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		value, err := browser.GetField(cmd.Context(), args[1], args[2])
		if err != nil {
			return err
		}
		os.Stdout.WriteString(value)
		fmt.Println()
		return nil
	},
}
