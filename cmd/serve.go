package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"einvoice/internal/config"
	"einvoice/internal/invoice"
	"einvoice/internal/logger"
	"einvoice/internal/server"
	"einvoice/internal/store"
	"einvoice/internal/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the invoice HTTP API",
	Long: `Start the HTTP API for creating, storing, validating, sharing and
exporting invoices.

Configuration is read from the environment:
  APP_ADDR         listen address (default :8080)
  JWT_SECRET       HS256 key used to verify bearer tokens (required)
  STORE_DRIVER     memory or mysql (default memory)
  DB_DSN           MySQL DSN, required when STORE_DRIVER=mysql
  ALLOWED_ORIGINS  comma-separated CORS origins

Example:
  JWT_SECRET=change-me einvoice serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides APP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	repo, err := openStore(cfg)
	if err != nil {
		return err
	}

	svc := invoice.NewService(repo, validation.NewValidator())

	ctx, cancel := signalContext(0, log)
	defer cancel()

	log.Info().
		Str("addr", cfg.Addr).
		Str("store", cfg.StoreDriver).
		Msg("Starting invoice API")

	if err := server.New(cfg, svc).Run(ctx); err != nil {
		return err
	}

	log.Info().Msg("Invoice API stopped")
	return nil
}

func openStore(cfg *config.Config) (store.Repository, error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		repo, err := store.OpenMySQL(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return repo, nil
	default:
		log := logger.WithComponent("serve")
		log.Warn().Msg("Using in-memory store, invoices are lost on restart")
		return store.NewMemoryStore(), nil
	}
}
