package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"empleoformal/internal/config"
	"empleoformal/internal/dataset"
	"empleoformal/internal/fetchers"
	"empleoformal/internal/logger"
	"empleoformal/internal/server"
	"empleoformal/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.ResolvedLogFormat()); err != nil {
		logger.Fatal("Failed to configure logging", err)
	}

	logger.Info("Starting Empleo Formal dashboard", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"source":      cfg.DataSource,
		"debug":       cfg.Debug,
		"version":     config.GetVersion(),
	})

	listener, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		logger.Fatal("Failed to listen", err, logger.Fields{"addr": cfg.ListenAddr()})
	}

	if err := run(ctx, cfg, listener); err != nil {
		logger.Fatal("Server error", err)
	}
	logger.Info("Server stopped")
}

// run loads the dataset and serves the dashboard on listener until ctx is done
func run(ctx context.Context, cfg *config.Config, listener net.Listener) error {
	loader := dataset.NewLoader(fetchers.NewDataFetcher(), cfg.Delimiter())

	ds, err := loader.Load(ctx, cfg.DataSource)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	srv, err := server.NewServer(cfg, ds)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	attachExportStorage(ctx, cfg, srv)

	if cfg.Debug && fetchers.ClassifySource(cfg.DataSource) == fetchers.SourceLocal {
		watcher, err := dataset.NewWatcher(cfg.DataSource, dataset.DefaultDebounce)
		if err != nil {
			logger.Warn("Dataset auto-reload disabled", logger.Fields{"error": err.Error()})
		} else {
			logger.Info("Watching dataset for changes", logger.Fields{"path": watcher.Path()})
			go watcher.Run(ctx, reloadDataset(ctx, loader, cfg.DataSource, srv))
		}
	}

	httpServer := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logger.Fields{"addr": listener.Addr().String()})
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down server, waiting up to %s", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// reloadDataset returns the watcher callback. A reload that fails keeps
// the dataset already served.
func reloadDataset(ctx context.Context, loader *dataset.Loader, source string, srv *server.Server) func() {
	return func() {
		ds, err := loader.Load(ctx, source)
		if err != nil {
			logger.Error("Dataset reload failed, keeping previous data", err, logger.Fields{"source": source})
			return
		}
		srv.SetDataset(ds)
	}
}

// attachExportStorage serves earlier exports under /files/ when their storage is reachable
func attachExportStorage(ctx context.Context, cfg *config.Config, srv *server.Server) {
	mode := storage.DeploymentLocal
	if cfg.GCSBucket != "" {
		mode = storage.DeploymentGCS
	}

	client, err := storage.NewStorageClient(ctx, mode, cfg)
	if err != nil {
		logger.Warn("Export file proxy disabled", logger.Fields{"mode": string(mode), "error": err.Error()})
		return
	}
	srv.Storage = client
}
