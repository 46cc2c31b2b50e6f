package domain

import (
	"net"
	"strconv"
	"time"
)

const (
	DefaultPort    = 119
	DefaultTimeout = 10 * time.Second
)

// Session holds the parameters of a single operation. It is never
// persisted and never shared between calls.
type Session struct {
	Host     string
	Port     int
	Timeout  time.Duration
	Username string
	Password string
}

// HasPrincipal reports whether the AUTHINFO handshake should run.
func (s Session) HasPrincipal() bool { return s.Username != "" }

// Addr returns host:port, substituting the standard NNTP port when unset.
func (s Session) Addr() string {
	port := s.Port
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

// WithDefaults fills in the port and timeout when they are zero.
func (s Session) WithDefaults() Session {
	if s.Port <= 0 {
		s.Port = DefaultPort
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s
}
