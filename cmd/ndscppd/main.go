// Command ndscppd is the LED display controller daemon: it drives a
// render loop over one or more canvases, pushes encoded frames to
// controllers over persistent TCP channels, and serves a read-only
// JSON view of the running system. Grounded on the teacher's main.go
// (cmfcmf-snapcast-control), which the same way parses flags, wires
// signal-based shutdown, and starts a single HTTP server.
package main

import (
	"log"
	"os"

	"github.com/davepl/NDSCPP/internal/app"
	"github.com/davepl/NDSCPP/internal/canvas"
	"github.com/davepl/NDSCPP/internal/channel"
	"github.com/davepl/NDSCPP/internal/config"
	"github.com/davepl/NDSCPP/internal/feature"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("ndscppd: %v", err)
	}

	application := app.New(cfg)

	// Persistent layout storage is out of scope (see DESIGN.md); the
	// canvas and channel below are a fixed illustrative topology. A real
	// deployment either adds channels via -discover or wires this
	// package into a caller that builds canvases from its own inventory.
	if err := buildDefaultLayout(application, cfg); err != nil {
		log.Fatalf("ndscppd: building default layout: %v", err)
	}

	log.Printf("ndscppd: starting on %s (fps=%.0f, discover=%v)", cfg.Addr, cfg.TargetFPS, cfg.Discover)
	if err := application.RunWithSignals(); err != nil {
		log.Fatalf("ndscppd: %v", err)
	}
	log.Println("ndscppd: stopped")
}

func buildDefaultLayout(application *app.Application, cfg *config.Config) error {
	const hostName = "127.0.0.1"
	const port = 7777
	const width, height = 64, 32

	ch := channel.New(hostName, "default", port, cfg.QueueSize)
	if err := application.Controller.AddChannel(ch); err != nil {
		return err
	}

	cv := canvas.New("default", width, height, cfg.TargetFPS)
	cv.AddFeature(feature.New(hostName, port, width, height, 0, 0, 0))
	application.AddCanvas(cv)

	return nil
}
