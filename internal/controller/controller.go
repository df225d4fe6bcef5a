// Package controller implements the channel controller: the map from
// controller host name to its Channel, used by features to resolve
// their back-reference and by the render loop to deliver frames.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davepl/NDSCPP/internal/channel"
)

// ErrDuplicateChannel is returned by AddChannel when hostName is already
// registered.
var ErrDuplicateChannel = errors.New("controller: duplicate channel host")

// ErrChannelNotFound is returned by FindChannelByHost when no channel is
// registered for the given host.
var ErrChannelNotFound = errors.New("controller: channel not found")

// Controller owns the set of channels, keyed by host name. It performs
// no implicit creation: a feature naming an unregistered host is a
// caller error, not something the controller silently fixes.
type Controller struct {
	mu       sync.RWMutex
	channels map[string]*channel.Channel
}

// New returns an empty controller.
func New() *Controller {
	return &Controller{channels: make(map[string]*channel.Channel)}
}

// AddChannel registers ch under its host name. It fails if a channel is
// already registered for that host.
func (c *Controller) AddChannel(ch *channel.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.channels[ch.HostName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateChannel, ch.HostName)
	}
	c.channels[ch.HostName] = ch
	return nil
}

// AddDiscovered builds a Channel for a controller found via mDNS
// discovery (internal/discovery) and registers it exactly as AddChannel
// would, so discovered and statically configured channels are
// indistinguishable to the rest of the system.
func (c *Controller) AddDiscovered(hostName, friendlyName string, port int, queueMaxSize int) (*channel.Channel, error) {
	ch := channel.New(hostName, friendlyName, port, queueMaxSize)
	if err := c.AddChannel(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// RemoveChannel unregisters and closes the channel for hostName, if any.
func (c *Controller) RemoveChannel(hostName string) {
	c.mu.Lock()
	ch, exists := c.channels[hostName]
	if exists {
		delete(c.channels, hostName)
	}
	c.mu.Unlock()

	if exists {
		ch.Close()
	}
}

// FindChannelByHost returns the channel registered for hostName.
func (c *Controller) FindChannelByHost(hostName string) (*channel.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ch, exists := c.channels[hostName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, hostName)
	}
	return ch, nil
}

// All returns every registered channel. Order is unspecified.
func (c *Controller) All() []*channel.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*channel.Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		out = append(out, ch)
	}
	return out
}

// StartAll opens every registered channel.
func (c *Controller) StartAll(ctx context.Context) {
	for _, ch := range c.All() {
		ch.Open(ctx)
	}
}

// StopAll closes every registered channel.
func (c *Controller) StopAll() {
	for _, ch := range c.All() {
		ch.Close()
	}
}
