package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener a server accepts connections on.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a long-running network server managed by main. The gRPC
// callable server and the HTTP session server both implement it.
type Server interface {
	// Start blocks until the server stops. A clean stop returns nil.
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}

// Pinger reports whether a backing dependency answers. Readiness probes
// call it with a short deadline.
type Pinger interface {
	Ping(ctx context.Context) error
}
