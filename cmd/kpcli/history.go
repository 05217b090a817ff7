package main

import (
	"fmt"
	"path/filepath"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kpbrowse/kpcli/internal/config"
	"github.com/kpbrowse/kpcli/pkg/history"
)

// History flags
var (
	historyLimit     int
	historyVault     string
	historyOlderThan string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 25, "Maximum number of visits to show")
	historyCmd.Flags().StringVar(&historyVault, "vault", "", "Only show visits for this database file")

	historyCmd.AddCommand(historyPruneCmd)
	historyPruneCmd.Flags().StringVar(&historyOlderThan, "older-than", "", "Delete visits older than duration (e.g. 30d)")
}

func openHistory() (*history.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return history.Open(filepath.Join(dir, "history.db"))
}

// historyCmd lists recently visited groups and entries.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently visited groups and entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		visits, err := store.Recent(historyVault, historyLimit)
		if err != nil {
			return err
		}
		if len(visits) == 0 {
			fmt.Println("No visits recorded")
			return nil
		}

		table := uitable.New()
		table.AddRow("WHEN", "VAULT", "KIND", "PATH")
		for _, v := range visits {
			table.AddRow(v.VisitedAt.Local().Format("2006-01-02 15:04"), filepath.Base(v.Vault), v.Kind, v.Path)
		}
		fmt.Println(table)
		return nil
	},
}

// historyPruneCmd deletes old visits.
var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyOlderThan == "" {
			return fmt.Errorf("--older-than flag is required")
		}
		duration, err := parseDuration(historyOlderThan)
		if err != nil {
			return fmt.Errorf("invalid older-than format: %w", err)
		}

		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Prune(duration)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d history entries\n", n)
		return nil
	},
}
