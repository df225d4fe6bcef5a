package controller

import (
	"errors"
	"testing"

	"github.com/davepl/NDSCPP/internal/channel"
)

func TestAddChannelDuplicate(t *testing.T) {
	c := New()

	if err := c.AddChannel(channel.New("host-a", "A", 7777, 4)); err != nil {
		t.Fatalf("first AddChannel() error = %v", err)
	}

	err := c.AddChannel(channel.New("host-a", "A again", 7777, 4))
	if !errors.Is(err, ErrDuplicateChannel) {
		t.Errorf("err = %v, want ErrDuplicateChannel", err)
	}
}

func TestFindChannelByHostNotFound(t *testing.T) {
	c := New()

	_, err := c.FindChannelByHost("missing")
	if !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("err = %v, want ErrChannelNotFound", err)
	}
}

func TestFindChannelByHost(t *testing.T) {
	c := New()
	ch := channel.New("host-a", "A", 7777, 4)
	if err := c.AddChannel(ch); err != nil {
		t.Fatalf("AddChannel() error = %v", err)
	}

	got, err := c.FindChannelByHost("host-a")
	if err != nil {
		t.Fatalf("FindChannelByHost() error = %v", err)
	}
	if got != ch {
		t.Error("FindChannelByHost() returned a different channel instance")
	}
}

func TestRemoveChannel(t *testing.T) {
	c := New()
	ch := channel.New("host-a", "A", 7777, 4)
	if err := c.AddChannel(ch); err != nil {
		t.Fatalf("AddChannel() error = %v", err)
	}

	c.RemoveChannel("host-a")

	if _, err := c.FindChannelByHost("host-a"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("channel still findable after removal: err = %v", err)
	}
}
