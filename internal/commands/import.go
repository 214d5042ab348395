package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MacroMan5/budgetmanager/internal/config"
	"github.com/MacroMan5/budgetmanager/internal/importer"
	"github.com/MacroMan5/budgetmanager/internal/storage/postgres"
)

func newImportCommand() *cobra.Command {
	var configPath string
	var userID string
	var accountID string
	var institution string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank statement CSV into an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), configPath, userID, accountID, institution, args[0])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "budgetd.yaml", "path to config file")
	cmd.Flags().StringVar(&userID, "user", "", "user ID owning the account (required)")
	cmd.Flags().StringVar(&accountID, "account", "", "account ID to import into (required)")
	cmd.Flags().StringVar(&institution, "institution", "", "institution mapping to apply (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("institution")

	return cmd
}

func runImport(ctx context.Context, configPath, userID, accountID, institution, filePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}

	store, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	imp := importer.New(store, store, logger)
	imp.MaxRows = cfg.Import.MaxRows
	report, err := imp.Import(ctx, userID, accountID, institution, filepath.Base(filePath), file)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d rows (%d duplicates, %d rejected)\n",
		report.Inserted, report.TotalRows, report.Duplicates, len(report.Errors))
	for _, rowErr := range report.Errors {
		fmt.Printf("  row %d: %s: %s\n", rowErr.RowIndex, rowErr.Reason, rowErr.Detail)
	}
	return nil
}
