package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ngrigoriev/zonewarden/internal/config"
	"github.com/ngrigoriev/zonewarden/internal/logging"
	"github.com/ngrigoriev/zonewarden/internal/resolve"
	"github.com/ngrigoriev/zonewarden/internal/store"
	"github.com/ngrigoriev/zonewarden/internal/zoneconfig"
)

// Run wires configuration, logging, the record store, the zone loader and
// both network servers together, then blocks until an interrupt or
// termination signal arrives. It is the single entry point cmd/zonewarden
// calls into.
func Run(cfg *config.Config) error {
	logger := logging.Configure(logging.Config{
		Level:      cfg.Logging.Level,
		Structured: cfg.Logging.Structured,
	})

	recordStore := store.New()
	batch, err := zoneconfig.LoadFile(cfg.Zone.MappingsFile)
	if err != nil {
		return fmt.Errorf("initial zone load failed: %w", err)
	}
	if err := recordStore.ReplaceAll(batch); err != nil {
		return fmt.Errorf("initial zone load rejected: %w", err)
	}
	logger.Info("zone file loaded", "path", cfg.Zone.MappingsFile, "records", len(batch))

	resolver := resolve.New(recordStore)
	handler := &QueryHandler{
		Logger:     logger,
		Resolver:   resolver,
		DefaultTTL: cfg.DNS.DefaultTTL,
	}

	udpServer := &UDPServer{Logger: logger, Handler: handler}
	mgmtServer := &ManagementServer{
		Logger:       logger,
		Store:        recordStore,
		AuthToken:    cfg.Management.AuthToken,
		MappingsPath: cfg.Zone.MappingsFile,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dnsAddr := fmt.Sprintf("%s:%d", cfg.DNS.Host, cfg.DNS.Port)
	mgmtAddr := fmt.Sprintf("%s:%d", cfg.Management.Host, cfg.Management.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("query server listening", "addr", dnsAddr)
		return udpServer.Run(gctx, dnsAddr)
	})
	g.Go(func() error {
		logger.Info("management server listening", "addr", mgmtAddr)
		return mgmtServer.Run(gctx, mgmtAddr)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "err", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
