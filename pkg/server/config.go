package server

import (
	"net/http"
	"net/url"
	"time"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address.
	Addr string

	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration

	// IdleTimeout closes idle keep-alive connections.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// WSReadLimit is the largest WebSocket frame accepted, in bytes.
	WSReadLimit int64

	// WSIdleTimeout closes a WebSocket that sends nothing for this long.
	WSIdleTimeout time.Duration

	// WSWriteTimeout bounds a single WebSocket write.
	WSWriteTimeout time.Duration

	// CheckOrigin validates WebSocket origins (default: SameOriginCheck).
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ShutdownTimeout:   10 * time.Second,
		WSReadLimit:       8 << 10,
		WSIdleTimeout:     5 * time.Minute,
		WSWriteTimeout:    10 * time.Second,
		CheckOrigin:       SameOriginCheck,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Addr == "" {
		out.Addr = d.Addr
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = d.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.WSReadLimit == 0 {
		out.WSReadLimit = d.WSReadLimit
	}
	if out.WSIdleTimeout == 0 {
		out.WSIdleTimeout = d.WSIdleTimeout
	}
	if out.WSWriteTimeout == 0 {
		out.WSWriteTimeout = d.WSWriteTimeout
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	return &out
}

// SameOriginCheck accepts WebSocket requests without an Origin header or whose
// Origin host equals the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}
