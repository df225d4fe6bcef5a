// Package discovery implements optional mDNS discovery of LED
// controllers, following the exact resolver/entries/select shape the
// teacher uses to discover Snapcast and Mopidy servers on the LAN
// (cmfcmf-snapcast-control/discovery.go), pointed at a different
// service name.
package discovery

import (
	"context"
	"fmt"
	"log"

	"github.com/grandcat/zeroconf"

	"github.com/davepl/NDSCPP/internal/controller"
)

// ServiceName is the mDNS service type LED controllers on this network
// are expected to advertise.
const ServiceName = "_ndscpp._tcp"

// DefaultQueueSize equals the default of the -queue flag. Browse does not
// read it: channels created from a discovery event get the queueMaxSize
// passed to Browse.
const DefaultQueueSize = 8

// Browse resolves ServiceName instances on the local network until ctx
// is cancelled, registering each newly seen controller with ctrl via
// AddDiscovered and opening it immediately (ctx also bounds the
// channel's connection lifetime, same as any statically configured
// channel started by Controller.StartAll). Duplicate advertisements for
// an already-registered host are ignored (AddChannel's duplicate check
// makes this safe).
func Browse(ctx context.Context, ctrl *controller.Controller, queueMaxSize int) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("discovery: create resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for {
			select {
			case entry := <-entries:
				if entry == nil {
					continue
				}
				handleEntry(ctx, ctrl, entry, queueMaxSize)
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceName, "local.", entries); err != nil {
		return fmt.Errorf("discovery: browse: %w", err)
	}
	return nil
}

func handleEntry(ctx context.Context, ctrl *controller.Controller, entry *zeroconf.ServiceEntry, queueMaxSize int) {
	if len(entry.AddrIPv4) == 0 {
		return
	}
	host := entry.AddrIPv4[0].String()

	if _, err := ctrl.FindChannelByHost(host); err == nil {
		return // already registered
	}

	log.Printf("discovery: found controller %q at %s:%d", entry.Instance, host, entry.Port)

	ch, err := ctrl.AddDiscovered(host, entry.Instance, entry.Port, queueMaxSize)
	if err != nil {
		log.Printf("discovery: failed to register %s: %v", host, err)
		return
	}
	ch.Open(ctx)
}
