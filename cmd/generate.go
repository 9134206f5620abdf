package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"einvoice/internal/invoice"
	"einvoice/internal/logger"
	"einvoice/internal/ubl"
	"einvoice/internal/validation"
	"einvoice/pkg/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate <invoice.json>",
	Short: "Generate a UBL invoice from JSON",
	Long: `Read an invoice in JSON form, check it, and write the UBL 2.1 document.

The generated document is validated against the Peppol rules right away;
errors and warnings are reported on stderr and do not prevent the output.

Example:
  einvoice generate invoice.json -o invoice.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var generateOutput string

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output XML file path (default: stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("generate")
	path := args[0]

	data, err := readInputFile(path, ".json", log)
	if err != nil {
		return err
	}

	var inv models.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return fmt.Errorf("failed to parse invoice JSON: %w", err)
	}

	if err := invoice.Check(&inv); err != nil {
		var verrs invoice.ValidationErrors
		if errors.As(err, &verrs) {
			for _, msg := range verrs.Messages() {
				fmt.Fprintf(os.Stderr, "  - %s\n", msg)
			}
		}
		return fmt.Errorf("invoice %s is not valid input: %w", path, err)
	}

	xml, err := ubl.Generate(&inv)
	if err != nil {
		return fmt.Errorf("failed to generate UBL: %w", err)
	}

	result := validation.NewValidator().Validate(xml)
	log.Info().
		Str("invoice_id", inv.InvoiceID).
		Bool("valid", result.Valid).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("Invoice generated")
	printIssues(result)

	return writeOutput([]byte(xml), generateOutput, log)
}

// printIssues writes validation errors and warnings to stderr.
func printIssues(result *models.ValidationResult) {
	for _, msg := range result.Errors {
		fmt.Fprintf(os.Stderr, "  ERROR   %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(os.Stderr, "  WARNING %s\n", msg)
	}
}
