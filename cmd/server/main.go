package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/api"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/config"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/googleauth"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/sheets"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/sigv4"
	s3store "github.com/cybergallery/upload-broker/pkg/uploadbroker/storage/s3"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	svc, err := buildService(cfg, logger)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(api.CORS(cfg.AllowedOrigins()))
	r.Mount("/", api.NewHandler(svc, logger).Routes())

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("upload broker starting", "port", cfg.Port, "bucket", cfg.R2Bucket)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func buildService(cfg *config.Config, logger *slog.Logger) (uploadbroker.Service, error) {
	creds, err := googleauth.ParseCredentials(cfg.ServiceAccountEmail, cfg.ServiceAccountKey)
	if err != nil {
		return nil, err
	}
	tokens := googleauth.NewTokenSource(creds)
	ledger := sheets.NewClient(cfg.SpreadsheetID, tokens, sheets.WithSheetName(cfg.SheetName))

	signer, err := sigv4.NewPresigner(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2AccountID, cfg.R2Bucket)
	if err != nil {
		return nil, err
	}

	store, err := s3store.NewStore(s3store.Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		Bucket:          cfg.R2Bucket,
	})
	if err != nil {
		return nil, err
	}

	return uploadbroker.New(signer, store, ledger,
		uploadbroker.WithMaxUploadBytes(cfg.MaxUploadBytes),
		uploadbroker.WithPresignExpires(cfg.PresignExpiry()),
		uploadbroker.WithPublicBaseURL(cfg.PublicBaseURL),
		uploadbroker.WithLogger(logger),
	), nil
}
