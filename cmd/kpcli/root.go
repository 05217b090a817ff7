package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kpbrowse/kpcli/internal/config"
	"github.com/kpbrowse/kpcli/pkg/audit"
	"github.com/kpbrowse/kpcli/pkg/history"
	"github.com/kpbrowse/kpcli/pkg/keepass"
)

var cfg config.Config

// Flag overrides for config options
var (
	flagProgram   string
	flagRecursive bool
	flagDebug     bool
	flagNoEnforce bool
)

var rootCmd = &cobra.Command{
	Use:   "kpcli",
	Short: "kpcli browses KeePass databases through keepassxc-cli",
	Long: `An interactive browser for KeePass (.kdbx, .kdb) databases.

All cryptography is delegated to an external vault tool (keepassxc-cli by
default); kpcli drives it as a subprocess, feeding the master password over
stdin and parsing its text output. Secrets are requested fresh on every
access and never cached.`,
	// PersistentPreRunE loads the configuration before any subcommand and
	// applies command-line overrides on top of it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadDefault()
		if err != nil {
			return err
		}
		if flagProgram != "" {
			cfg.CLIProgram = flagProgram
		}
		if cmd.Flags().Changed("recursive") {
			cfg.RecursiveListing = flagRecursive
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug = flagDebug
		}
		if flagNoEnforce {
			cfg.EnforceValidPassword = false
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProgram, "program", "", "Vault tool binary (default keepassxc-cli)")
	rootCmd.PersistentFlags().BoolVarP(&flagRecursive, "recursive", "R", false, "List all descendants instead of one level")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log raw subprocess traffic to stderr (UNSAFE: includes cleartext secrets)")
	rootCmd.PersistentFlags().BoolVar(&flagNoEnforce, "no-enforce", false, "Surface unlock failures instead of re-prompting")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(mcpServerCmd)
}

// openBrowser prompts for the master password and assembles a browser over
// dbPath, with audit and history recording wired in per configuration.
// The returned cleanup must be called when the vault view is closed.
func openBrowser(dbPath string) (*keepass.Browser, func(), error) {
	if !keepass.IsVaultFile(dbPath) {
		return nil, nil, fmt.Errorf("%s is not a KeePass database (.kdbx, .kdb)", dbPath)
	}

	runner := &keepass.ExecRunner{Program: cfg.CLIProgram}
	if cfg.Debug {
		runner.Debug = os.Stderr
	}

	password, err := keepass.TerminalPrompt(dbPath)
	if err != nil {
		return nil, nil, err
	}

	session := keepass.NewSession(dbPath, password, runner)
	session.EnforcePassword = cfg.EnforceValidPassword

	browser := keepass.NewBrowser(session)
	browser.Recursive = cfg.RecursiveListing

	var closers []func()

	var auditLog *audit.Logger
	if cfg.Audit {
		dir, err := config.Dir()
		if err != nil {
			return nil, nil, err
		}
		auditLog, err = audit.NewLogger(filepath.Join(dir, "audit"))
		if err != nil {
			return nil, nil, err
		}
		if err := auditLog.Log(audit.OpVaultOpen, dbPath, "", audit.ResultSuccess); err != nil {
			log.Printf("warning: audit log write failed: %v", err)
		}
		// Failed unlock attempts are only observable at the prompt, so the
		// retry prompt records them before asking again.
		inner := session.Prompt
		session.Prompt = func(db string) (string, error) {
			if err := auditLog.Log(audit.OpUnlockFailed, db, "", audit.ResultError); err != nil {
				log.Printf("warning: audit log write failed: %v", err)
			}
			return inner(db)
		}
	}

	var visits *history.Store
	if cfg.History {
		dir, err := config.Dir()
		if err != nil {
			return nil, nil, err
		}
		visits, err = history.Open(filepath.Join(dir, "history.db"))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { visits.Close() })
	}

	browser.OnAccess = func(op, path string) {
		if auditLog != nil {
			if err := auditLog.Log(op, dbPath, path, audit.ResultSuccess); err != nil {
				log.Printf("warning: audit log write failed: %v", err)
			}
		}
		if visits != nil && path != "" {
			kind := history.KindEntry
			if op == keepass.OpGroupList || op == keepass.OpGroupEnter {
				kind = history.KindGroup
			}
			if err := visits.Record(dbPath, path, kind); err != nil {
				log.Printf("warning: history write failed: %v", err)
			}
		}
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return browser, cleanup, nil
}

// parseDuration parses a duration string like "24h", "30d", "12m", "1y".
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("duration too short: %s", s)
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", valueStr)
	}

	switch unit {
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	case 'y':
		return time.Duration(value) * 365 * 24 * time.Hour, nil
	default:
		return time.ParseDuration(s)
	}
}
