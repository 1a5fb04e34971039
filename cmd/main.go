package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/adapters/localstorage"
	"repo-manager/internal/adapters/server"
	"repo-manager/internal/config"
	"repo-manager/internal/logging"
	"repo-manager/internal/metrics"
	"repo-manager/internal/settings"
	"repo-manager/internal/usecases"
)

func main() {
	cfg := config.LoadConfig("config.yaml")

	logger := logrus.StandardLogger()
	logCloser, err := logging.Configure(logger, cfg.Logging)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	// Надо убедиться, что корень репозитория существует прежде чем запускать сервер.
	if err := os.MkdirAll(cfg.Storage.RepositoryPath, cfg.File.DirPermissions); err != nil {
		logrus.Fatalf("Failed to create repository directory: %v", err)
	}

	persister := settings.NewFilePersister(cfg.Storage.ConfigDir)
	general, admin, err := persister.Load()
	if err != nil {
		logrus.Fatalf("Failed to load settings: %v", err)
	}

	// порог из general.toml действует с этого момента и до первого изменения через api.
	levels := logging.NewLevelController(logger, general.Logging.Level().Logrus())
	store := settings.NewStore(general, admin, persister, levels)
	metrics.RegisterLogLevel(func() float64 { return float64(levels.Level()) })

	fileStorage := localstorage.NewLocalStorageService(
		cfg.Storage.RepositoryPath,
		cfg.File.DirPermissions,
		cfg.File.FilePermissions,
	)
	fileUsecase := usecases.NewFileManagementUseCase(fileStorage, cfg)

	router := server.NewRouter(
		cfg,
		server.NewHandler(fileUsecase, cfg.File.ForbiddenExtensions, cfg.Server.MaxUploadSize, cfg.Messages),
		server.NewConfigHandler(store, cfg.Messages),
		server.NewThemeHandler(store, cfg.Messages),
	)

	// порт читается один раз: через api он не меняется.
	addr := fmt.Sprintf(":%d", store.General().Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// graceful shutdown.
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":       addr,
			"repository": cfg.Storage.RepositoryPath,
			"log_level":  levels.Level().String(),
		}).Warn("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logrus.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	} else {
		logrus.Warn("Server stopped gracefully")
	}
}
