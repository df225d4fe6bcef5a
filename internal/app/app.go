// Package app assembles one running daemon: its canvases, its channel
// controller, its optional discovery browser, and its read-API HTTP
// server, all owned by a single non-global Application value. Grounded
// on the teacher's main() signal-to-cancel-to-Shutdown wiring
// (cmfcmf-snapcast-control/main.go), generalized away from package-level
// globals per Design Note §9.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/davepl/NDSCPP/internal/api"
	"github.com/davepl/NDSCPP/internal/canvas"
	"github.com/davepl/NDSCPP/internal/config"
	"github.com/davepl/NDSCPP/internal/controller"
	"github.com/davepl/NDSCPP/internal/discovery"
)

// shutdownTimeout bounds how long Run waits for the HTTP server to
// drain in-flight requests after a shutdown signal.
const shutdownTimeout = 5 * time.Second

// Application owns every long-lived piece of one daemon instance: no
// package-level state is used anywhere in this module.
type Application struct {
	cfg *config.Config

	mu       sync.RWMutex
	canvases []*canvas.Canvas

	Controller *controller.Controller
	server     *http.Server
}

// New builds an Application from cfg. Canvases must be added with
// AddCanvas before Run is called.
func New(cfg *config.Config) *Application {
	return &Application{
		cfg:        cfg,
		Controller: controller.New(),
	}
}

// AddCanvas registers c. The caller must have already populated c's
// features and registered their backing channels with a.Controller;
// c's effects manager is started when Run is called.
func (a *Application) AddCanvas(c *canvas.Canvas) {
	a.mu.Lock()
	a.canvases = append(a.canvases, c)
	a.mu.Unlock()
}

// Canvases returns the registered canvases in registration order. The
// returned slice is a copy; callers must not rely on its identity.
func (a *Application) Canvases() []*canvas.Canvas {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*canvas.Canvas, len(a.canvases))
	copy(out, a.canvases)
	return out
}

// Run starts every registered canvas's effects manager, the channel
// controller, optional mDNS discovery, and the read-API HTTP server,
// then blocks until ctx is cancelled (typically by SIGINT/SIGTERM, see
// RunWithSignals) or the HTTP server fails to start. It always returns
// after a clean or forced shutdown.
func (a *Application) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Controller.StartAll(runCtx)

	for _, c := range a.Canvases() {
		c.Effects.Start(c, a.Controller)
	}
	defer func() {
		for _, c := range a.Canvases() {
			c.Effects.Stop()
		}
		a.Controller.StopAll()
	}()

	if a.cfg.Discover {
		go func() {
			if err := discovery.Browse(runCtx, a.Controller, a.cfg.QueueSize); err != nil {
				log.Printf("app: discovery stopped: %v", err)
			}
		}()
	}

	apiServer := api.NewServer(a.Canvases, a.Controller)
	a.server = &http.Server{
		Addr:    a.cfg.Addr,
		Handler: apiServer.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("app: read API listening on %s", a.cfg.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-runCtx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("app: HTTP server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: HTTP server shutdown: %w", err)
	}
	return nil
}

// RunWithSignals runs the application until SIGINT or SIGTERM arrives,
// then shuts down gracefully. This is the entry point cmd/ndscppd uses.
func (a *Application) RunWithSignals() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
