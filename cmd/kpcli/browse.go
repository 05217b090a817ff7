package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kpbrowse/kpcli/internal/cli"
	"github.com/kpbrowse/kpcli/pkg/keepass"
)

var (
	groupColor = color.New(color.FgBlue, color.Bold)
	dimColor   = color.New(color.Faint)
)

// browseCmd starts the interactive vault browser.
var browseCmd = &cobra.Command{
	Use:   "browse [database]",
	Short: "Browse a vault interactively",
	Long: `Open a vault and walk its group tree interactively.

Commands:
  ls [pattern]        list the current group
  cd <group>          descend into a group ("cd .." goes back)
  show <entry>        show an entry with the password masked
  get <entry> <field> print one raw field value
  pwd                 print the current group path
  help                show this help
  quit                close the vault`,
	Args: cobra.ExactArgs(1),
}

// RunE is assigned in init to avoid an initialization cycle: the REPL's
// help command reads browseCmd.Long.
func init() {
	browseCmd.RunE = func(cmd *cobra.Command, args []string) error {
		browser, cleanup, err := openBrowser(args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		return runREPL(cmd, browser)
	}
}

// runREPL reads commands from stdin until quit or EOF. One command maps to
// at most one vault query; the loop blocks while the subprocess runs.
func runREPL(cmd *cobra.Command, browser *keepass.Browser) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Printf("%s> ", browser.Path())

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name, args := fields[0], fields[1:]

		if name == "quit" || name == "exit" {
			return nil
		}
		if err := runBrowseCommand(cmd, browser, name, args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func runBrowseCommand(cmd *cobra.Command, browser *keepass.Browser, name string, args []string) error {
	switch name {
	case "ls":
		pattern := ""
		if len(args) > 0 {
			pattern = args[0]
		}
		return printListing(cmd, browser, pattern)

	case "cd":
		if len(args) != 1 {
			return fmt.Errorf("usage: cd <group>")
		}
		if args[0] == ".." {
			browser.GoBack()
			return nil
		}
		group := args[0]
		if !keepass.IsGroup(group) {
			group += "/"
		}
		browser.EnterGroup(group)
		return nil

	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: show <entry>")
		}
		details, err := browser.GetEntryDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(details)
		return nil

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: get <entry> <field>")
		}
		value, err := browser.GetField(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil

	case "pwd":
		fmt.Println("/" + browser.Path())
		return nil

	case "help":
		fmt.Println(browseCmd.Long)
		return nil

	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}
}

// printListing renders the current group as a table, groups first styled
// apart from leaf entries. Rows keep the vault tool's emission order.
func printListing(cmd *cobra.Command, browser *keepass.Browser, pattern string) error {
	entries, err := browser.ListCurrentGroup(cmd.Context())
	if err != nil {
		return err
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = string(e)
	}
	paths, err = cli.FilterEntries(pattern, paths)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		fmt.Println("(empty)")
		return nil
	}

	table := uitable.New()
	table.AddRow("NAME", "TYPE")
	for _, p := range paths {
		if keepass.IsGroup(p) {
			table.AddRow(groupColor.Sprint(p), dimColor.Sprint("group"))
		} else {
			table.AddRow(p, dimColor.Sprint("entry"))
		}
	}
	fmt.Println(table)
	return nil
}
