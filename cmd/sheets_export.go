package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"einvoice/internal/config"
	"einvoice/internal/export"
	"einvoice/internal/logger"
	"einvoice/internal/sheets"
	"einvoice/internal/summary"
)

var sheetsExportCmd = &cobra.Command{
	Use:   "sheets-export <folder>",
	Short: "Append invoice summaries from a folder to Google Sheets",
	Long: `Validate every .xml invoice below a folder and append one summary row per
valid invoice to a Google Sheets worksheet.

The target spreadsheet comes from GOOGLE_SHEET_URL and credentials from
GOOGLE_APPLICATION_CREDENTIALS (path) or GOOGLE_CREDENTIALS (JSON).
Use --dry-run to print the rows as CSV instead of uploading them.

Example:
  einvoice sheets-export ./invoices --sheet "Q1 2025"
  einvoice sheets-export ./invoices --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runSheetsExport,
}

var (
	sheetsName       string
	sheetsDryRun     bool
	sheetsIncludeBad bool
)

func init() {
	rootCmd.AddCommand(sheetsExportCmd)
	sheetsExportCmd.Flags().StringVar(&sheetsName, "sheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET)")
	sheetsExportCmd.Flags().BoolVar(&sheetsDryRun, "dry-run", false, "Print rows as CSV instead of uploading")
	sheetsExportCmd.Flags().BoolVar(&sheetsIncludeBad, "include-invalid", false, "Also export invoices that fail validation")
}

func runSheetsExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sheets-export")
	folder := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if sheetsName == "" {
		sheetsName = cfg.GoogleSheetWorksheet
	}
	if !sheetsDryRun && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required")
	}

	files, err := findFiles(folder, ".xml")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No XML files found in %s\n", folder)
		return nil
	}

	ctx, cancel := signalContext(5*time.Minute, log)
	defer cancel()

	results := validateFiles(ctx, files, cfg.BatchWorkers, log)

	var rows []summary.Summary
	skipped := 0
	for _, r := range results {
		if r.Err != "" || (!r.Valid && !sheetsIncludeBad) {
			skipped++
			continue
		}
		rows = append(rows, r.Summary)
	}

	log.Info().
		Int("files", len(files)).
		Int("rows", len(rows)).
		Int("skipped", skipped).
		Msg("Summaries collected")

	if sheetsDryRun {
		fmt.Println()
		return export.WriteCSV(cmd.OutOrStdout(), rows)
	}

	if len(rows) == 0 {
		fmt.Println("Nothing to export")
		return nil
	}

	svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to create Google Sheets service: %w", err)
	}
	if err := svc.AppendSummaries(ctx, rows, sheetsName); err != nil {
		return fmt.Errorf("failed to export to Google Sheets: %w", err)
	}

	fmt.Printf("\nExported %d invoice(s) to sheet %q (%d skipped)\n", len(rows), sheetsName, skipped)
	return nil
}
