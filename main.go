package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-dev-chunker/internal/chunkservice"
	"github.com/Zachkp/zach-dev-chunker/internal/config"
	"github.com/Zachkp/zach-dev-chunker/internal/logger"
	"github.com/Zachkp/zach-dev-chunker/internal/metrics"
	"github.com/Zachkp/zach-dev-chunker/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.JSON = cfg.Log.JSON
	logger.Init(logCfg)
	log := logger.GetDefault()

	gin.SetMode(cfg.Server.Mode)

	site := web.NewServer(chunkservice.NewClient(cfg.Service.BaseURL), metrics.New(), web.Options{
		HealthTimeout: cfg.Service.HealthTimeout,
		ChunkTimeout:  cfg.Service.ChunkTimeout,
		MaxViews:      cfg.Views.Size,
		ViewTTL:       cfg.Views.TTL,
	})
	defer site.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           site.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// refresh holds the response until its health probe resolves
		WriteTimeout: cfg.Service.HealthTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting chunker site", "address", srv.Addr, "service", cfg.Service.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
