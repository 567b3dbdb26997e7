package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryoneth/job-bot-telegram/internal/audit"
	"github.com/cryoneth/job-bot-telegram/internal/store"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse recorded decisions interactively",
	Long:  "Opens a TUI: pick a user, then browse the decisions the pipeline recorded for them.",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 200, "maximum decisions to load per user")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Ledger.Backend != "sqlite" {
		return fmt.Errorf("audit requires the sqlite ledger backend, configured backend is %q", cfg.Ledger.Backend)
	}

	ledger, err := store.NewSQLiteLedger(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	profiles, err := openProfiles(cfg)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer profiles.Close()

	ctx := context.Background()
	all, err := profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(all) == 0 {
		fmt.Println("no users configured — add one with `jobbot users add`")
		return nil
	}

	for {
		idx, err := audit.RunUserPicker(all)
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}

		rows, err := ledger.DecisionsForUser(ctx, all[idx].UserID, auditLimit)
		if err != nil {
			return fmt.Errorf("load decisions: %w", err)
		}

		quit, err := audit.RunDecisionTUI(all[idx].UserID, rows)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		// Esc returns to the picker.
	}
}
