package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kpbrowse/kpcli/internal/config"
	"github.com/kpbrowse/kpcli/pkg/audit"
)

// Audit flags
var (
	auditLimit          int
	auditPruneOlderThan string
)

func init() {
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum number of events to show")
	auditPruneCmd.Flags().StringVar(&auditPruneOlderThan, "older-than", "", "Delete logs older than duration (e.g. 12m)")
}

func openAuditLog() (*audit.Logger, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return audit.NewLogger(filepath.Join(dir, "audit"))
}

// auditCmd is the parent command for audit operations.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
}

// auditListCmd lists audit log entries.
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := openAuditLog()
		if err != nil {
			return err
		}

		events, err := logger.List(auditLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		for _, event := range events {
			line := fmt.Sprintf("%s %s %s", event.Timestamp, event.Operation, event.Result)
			if event.Path != "" {
				line += fmt.Sprintf(" path:%s", event.Path)
			}
			if event.Vault != "" {
				line += fmt.Sprintf(" vault:%s", filepath.Base(event.Vault))
			}
			fmt.Println(line)
		}
		fmt.Printf("\nTotal: %d events\n", len(events))
		return nil
	},
}

// auditVerifyCmd verifies audit log integrity.
var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify audit log HMAC chain integrity",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := openAuditLog()
		if err != nil {
			return err
		}

		result, err := logger.Verify()
		if err != nil {
			return err
		}

		if result.Valid {
			fmt.Printf("Audit log verified: %d records, chain intact\n", result.RecordsTotal)
		} else {
			fmt.Println("Audit log verification FAILED")
			fmt.Printf("  Records total: %d\n", result.RecordsTotal)
			fmt.Printf("  Records verified: %d\n", result.RecordsVerified)
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e)
			}
			return fmt.Errorf("audit log integrity check failed")
		}

		// Also output as JSON for machine parsing
		jsonResult, _ := json.Marshal(result)
		fmt.Printf("\nJSON: %s\n", jsonResult)
		return nil
	},
}

// auditPruneCmd deletes old audit logs.
var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old audit log files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditPruneOlderThan == "" {
			return fmt.Errorf("--older-than flag is required")
		}
		duration, err := parseDuration(auditPruneOlderThan)
		if err != nil {
			return fmt.Errorf("invalid older-than format: %w", err)
		}

		logger, err := openAuditLog()
		if err != nil {
			return err
		}

		deleted, err := logger.Prune(duration)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d audit log files\n", deleted)
		return nil
	},
}
