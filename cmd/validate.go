package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"einvoice/internal/logger"
	"einvoice/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <invoice.xml>",
	Short: "Validate a UBL invoice against the Peppol rules",
	Long: `Check a UBL 2.1 invoice document against the Peppol BIS Billing 3.0
business rules and print the result as JSON.

The command exits with a non-zero status when the document is not valid.

Example:
  einvoice validate invoice.xml
  einvoice validate invoice.xml -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateOutput string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "Output JSON file path (default: stdout)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate")
	path := args[0]

	data, err := readInputFile(path, ".xml", log)
	if err != nil {
		return err
	}

	result := validation.NewValidator().Validate(string(data))
	log.Info().
		Str("file", path).
		Bool("valid", result.Valid).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("Validation finished")

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := writeOutput(out, validateOutput, log); err != nil {
		return err
	}

	if !result.Valid {
		return fmt.Errorf("%s is not a valid invoice (%d error(s))", path, len(result.Errors))
	}
	return nil
}
