// @title           Library Repository API
// @version         1.0
// @description     Catalog, borrowing and account endpoints of the library repository backend.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/logging"
	"library-backend/internal/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("exit", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(cfg.Mode)
	logger.Info("starting", "mode", cfg.Mode, "version", cfg.Version, "driver", cfg.DB.Driver)

	// 500 bodies carry the cause only while developing
	apperr.ExposeInternal(cfg.Mode == config.ModeDev)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer conn.Close()
	logger.Info("connected to DB", "dbname", cfg.DB.DBName, "path", cfg.DB.Path)

	if cfg.Mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewRouter(cfg, conn),
	}

	errCh := make(chan error, 1)
	go func() {
		certFile, keyFile, tls := cfg.TLSFiles()
		if tls {
			logger.Info("listening", "addr", "https://"+cfg.Server.Addr)
			errCh <- srv.ListenAndServeTLS(certFile, keyFile)
			return
		}
		logger.Info("listening", "addr", "http://"+cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	// graceful shutdown
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
