package main

import (
	"net"

	"github.com/coreos/go-systemd/v22/activation"
)

// activated holds the sockets passed by systemd socket activation, keyed by
// FileDescriptorName ("http" or "monitor")
var activated map[string][]net.Listener

func loadActivatedListeners() {
	m, err := activation.ListenersWithNames()
	if err != nil {
		logger.Sugar().Warn("systemd socket activation: ", err)
		return
	}
	activated = m
}

// newListener returns the activated socket with name, or listens on addr
func newListener(name, addr string) (net.Listener, error) {
	if ls := activated[name]; len(ls) > 0 && ls[0] != nil {
		return ls[0], nil
	}
	return net.Listen("tcp", addr)
}
