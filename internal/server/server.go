// Package server exposes the invoice service over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"einvoice/internal/config"
	"einvoice/internal/invoice"
	"einvoice/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Options configures the router. Zero MaxBodyBytes means config.DefaultMaxBodyBytes.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *invoice.Service, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware(opts.AllowedOrigins))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewInvoiceHandler(svc)

	protected := router.Group("/api")
	protected.Use(AuthRequired(opts.JWTSecret), limitBody(opts.MaxBodyBytes))
	{
		protected.POST("/validate", h.ValidateXML)

		protected.GET("/invoices", h.List)
		protected.POST("/invoices", h.Create)
		protected.GET("/invoices/export.csv", h.ExportCSV)
		protected.GET("/invoices/:id", h.Get)
		protected.PUT("/invoices/:id", h.Update)
		protected.DELETE("/invoices/:id", h.Delete)
		protected.GET("/invoices/:id/xml", h.XML)
		protected.GET("/invoices/:id/qr", h.QR)
		protected.POST("/invoices/:id/share", h.Share)
		protected.POST("/invoices/:id/validate", h.Validate)
	}

	return router
}

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func New(cfg *config.Config, svc *invoice.Service) *Server {
	router := NewRouter(svc, Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: logger.WithComponent("http-server"),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	const op = "Run"

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("%s: server failed: %w", op, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown failed: %w", op, err)
	}
	return nil
}
