package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"einvoice/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "einvoice - generate, validate and serve UBL e-invoices",
	Long: `einvoice turns invoice data into UBL 2.1 documents that follow
Peppol BIS Billing 3.0 and checks documents against the Peppol business rules.

It can be used as a command-line tool on local files or run as an HTTP API
that stores, shares and exports invoices.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
