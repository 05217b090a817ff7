package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpbrowse/kpcli/internal/cli"
	"github.com/kpbrowse/kpcli/pkg/keepass"
)

var lsPattern string

func init() {
	lsCmd.Flags().StringVarP(&lsPattern, "pattern", "p", "", "Filter entries by glob or substring")
}

// lsCmd lists a group non-interactively, for scripting.
var lsCmd = &cobra.Command{
	Use:   "ls [database] [group]",
	Short: "List entries under a group",
	Long: `List the entries and subgroups under a group, one path per line,
in the order the vault tool emits them. Groups carry a trailing slash.
With --recursive, all descendants are listed with vault-root-relative paths.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		browser, cleanup, err := openBrowser(args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		if len(args) == 2 {
			group := args[1]
			if !keepass.IsGroup(group) {
				group += "/"
			}
			browser.EnterGroup(group)
		}

		entries, err := browser.ListCurrentGroup(cmd.Context())
		if err != nil {
			return err
		}

		paths := make([]string, len(entries))
		for i, e := range entries {
			paths[i] = string(e)
		}
		paths, err = cli.FilterEntries(lsPattern, paths)
		if err != nil {
			return err
		}

		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}
