package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/catalog"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/config"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/mcpserver"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/scheduler"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/sources/seed"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/version"
)

type App struct {
	cfg       *config.Config
	logger    logger.Logger
	server    *httpserver.Server
	mcp       *mcpserver.Server
	catalog   *catalog.Catalog
	refresher *scheduler.CatalogRefresher
}

// New wires the application. With mcpMode the process speaks MCP over
// stdio instead of serving HTTP; logs go to stderr either way so they
// never corrupt the protocol stream.
func New(mcpMode bool) *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	client := arcgis.NewClient(&http.Client{}, cfg.ProbeTimeout, cfg.QueryTimeout, loggerClient)

	registry := catalog.NewRegistry()
	if cfg.ServicesFile != "" {
		entries, err := seed.NewLoader(cfg.ServicesFile).Load()
		if err != nil {
			loggerClient.Warn("failed to load services seed file, using built-in registry",
				logger.String("file", cfg.ServicesFile),
				logger.Error(err))
		}
		for _, e := range entries {
			registry.Register(e.Name, e.URL)
		}
	}

	cat := catalog.New(client, registry, cfg.APIBase, cfg.CacheTTL, loggerClient)

	reloadTrigger := make(chan struct{}, 1)
	refresher := scheduler.NewCatalogRefresher(cat, loggerClient, cfg.ReloadInterval, reloadTrigger)

	a := &App{
		cfg:       cfg,
		logger:    loggerClient,
		catalog:   cat,
		refresher: refresher,
	}

	if mcpMode {
		a.mcp = mcpserver.New(cat, client, version.Version, loggerClient)
		return a
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		Catalog:       cat,
		Client:        client,
		ReloadTrigger: reloadTrigger,
	}
	a.server = httpserver.New(cfg, loggerClient, d)

	return a
}

func (a *App) Run() error {
	a.logger.Infof("eThekwini GIS %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog refresher: %w", err)
	}
	a.logger.Info("catalog refresher started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if a.mcp != nil {
		err := a.mcp.Run(ctx)
		a.refresher.Stop()
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("mcp server error: %w", err)
		}
		a.logger.Info("MCP server stopped cleanly")
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("server stopped cleanly")
	return nil
}
