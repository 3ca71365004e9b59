package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/soapnote/internal/config"
	"github.com/ehr/soapnote/internal/domain/demo"
	"github.com/ehr/soapnote/internal/domain/note"
	"github.com/ehr/soapnote/internal/domain/wizard"
	"github.com/ehr/soapnote/internal/platform/completion"
	"github.com/ehr/soapnote/internal/platform/middleware"
	"github.com/ehr/soapnote/internal/platform/pdfexport"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "soapnote-server",
		Short:        "SOAP note generation and PDF export service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(renderDemoCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the SOAP note API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			return runServer(cfg, newLogger(cfg, os.Stdout))
		},
	}
}

// loadConfig loads and validates configuration. needsModel additionally
// requires the completion API key.
func loadConfig(needsModel bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if needsModel {
		if err := cfg.RequireCompletion(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.IsDev() {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func completionOptions(cfg *config.Config) completion.Options {
	return completion.Options{
		BaseURL:      cfg.OpenAIBaseURL,
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.CompletionModel,
		MaxTokens:    cfg.CompletionMaxTokens,
		Timeout:      cfg.CompletionTimeout,
		MaxRetries:   cfg.CompletionMaxRetries,
		RetryWait:    cfg.CompletionRetryWait,
		RetryMaxWait: cfg.CompletionRetryMaxWait,
	}
}

// newExporter reads the letterhead once. A missing letterhead file only
// drops the letterhead from the PDF.
func newExporter(cfg *config.Config, logger zerolog.Logger) (*pdfexport.Exporter, error) {
	lh, err := pdfexport.LoadLetterhead(cfg.LetterheadPath)
	if err != nil {
		return nil, fmt.Errorf("load letterhead: %w", err)
	}
	if lh == nil {
		logger.Info().Str("path", cfg.LetterheadPath).Msg("letterhead not found, exporting without it")
	}
	return pdfexport.NewExporter(pdfexport.Options{
		Letterhead: lh,
		Author:     cfg.PDFAuthor,
	}), nil
}

func newNoteService(cfg *config.Config, logger zerolog.Logger, completer completion.Completer, model string) (*note.Service, error) {
	exporter, err := newExporter(cfg, logger)
	if err != nil {
		return nil, err
	}
	return note.NewService(completer, exporter, logger, model), nil
}

// newServer builds the echo instance with middleware and every route.
func newServer(cfg *config.Config, logger zerolog.Logger, svc *note.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{echo.HeaderContentDisposition, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
	}))
	apiV1.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	note.NewHandler(svc, demo.CodeSuggestions).RegisterRoutes(apiV1)
	wizard.NewHandler(wizard.Initial(demo.Form(), demo.CodeSuggestions)).RegisterRoutes(apiV1)
	demo.NewHandler().RegisterRoutes(apiV1)

	return e
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	client := completion.NewClient(completionOptions(cfg), logger)
	svc, err := newNoteService(cfg, logger, client, client.Model())
	if err != nil {
		return err
	}
	e := newServer(cfg, logger, svc)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("model", client.Model()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
