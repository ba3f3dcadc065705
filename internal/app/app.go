// Package app wires the duel server's components together and runs the
// HTTP/websocket listener: logging router construction, catalog client,
// effect runtime script registry, gateway, and the HTTP mux, per
// SPEC_FULL.md §2's data-flow description.
//
// Grounded on the teacher's internal/app.Run (logging router + sink
// construction, then hub/http-server startup), generalized from "start one
// continuously-ticking world simulation" to "start the room/matchmaking
// gateway that constructs a duel.Actor per room on demand".
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"duelserver/internal/catalog"
	"duelserver/internal/config"
	"duelserver/internal/duel"
	"duelserver/internal/effectsrt"
	"duelserver/internal/gateway"
	dnet "duelserver/internal/net"
	"duelserver/internal/observability"
	"duelserver/internal/room"
	"duelserver/internal/telemetry"
	"duelserver/logging"
	loggingsinks "duelserver/logging/sinks"
)

// sweepInterval is how often the Room Registry's TTL sweep runs. SPEC_FULL.md
// §5 calls for an hour-scale room TTL; sweeping far more often than the TTL
// itself keeps expired rooms from lingering without needing sub-second
// precision.
const sweepInterval = 5 * time.Minute

// runSweeper periodically evicts rooms past their TTL until stop is closed.
func runSweeper(gw *gateway.Gateway, stop <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			gw.Sweep()
		}
	}
}

// Run resolves configuration from the environment (overridden by cfgOverride
// when non-nil, for tests), constructs every component, and serves HTTP
// until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfgOverride *config.Config) error {
	logger := log.Default()

	cfg := config.Default()
	if cfgOverride != nil {
		cfg = *cfgOverride
	} else {
		resolved, warnings := config.FromEnv()
		cfg = resolved
		for _, w := range warnings {
			logger.Printf("config: %s", w)
		}
	}

	logConfig := logging.DefaultConfig()
	sinks := map[string]logging.Sink{
		"console": loggingsinks.NewConsoleSink(os.Stdout, logConfig.Console),
	}
	router, err := logging.NewRouter(logConfig, logging.SystemClock{}, logger, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	duel.SetActionLogCapacity(cfg.ActionLogCapacity)

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout, cfg.CatalogMaxRetry)

	scripts := effectsrt.NewRegistry()
	for _, def := range effectsrt.BuiltInScripts() {
		scripts.Load(def)
	}
	if err := scripts.Validate(); err != nil {
		return fmt.Errorf("built-in card scripts failed validation: %w", err)
	}

	gw := gateway.New(catalogClient, scripts, telemetry.WrapLogger(logger), router, gateway.Config{
		Room: room.Config{ForfeitTimeout: cfg.ForfeitTimeout, RoomTTL: cfg.RoomTTL},
	})

	clientDir := "" // no bundled client in this core-server build; served only if set
	handler := dnet.NewHTTPHandler(gw, dnet.HTTPHandlerConfig{
		ClientDir:     clientDir,
		Logger:        telemetry.WrapLogger(logger),
		Observability: observability.Config{EnablePprofTrace: cfg.EnablePprofTrace},
	})

	sweepStop := make(chan struct{})
	defer close(sweepStop)
	go runSweeper(gw, sweepStop)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: handler}
	logger.Printf("duel server listening on %s", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpErr := srv.Shutdown(shutdownCtx)
		if err := gw.Shutdown(shutdownCtx); err != nil {
			logger.Printf("gateway: error draining match actors on shutdown: %v", err)
		}
		return httpErr
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}
