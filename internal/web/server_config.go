package web

import "github.com/rook-computer/clockface/internal/config"

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - device:    disabled unless a listen address is configured
// - simulator: :8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

func ServerConfigFrom(c config.ServerConfig) ServerConfig {
	return ServerConfig{ListenAddr: c.ListenAddr, DevMode: c.DevMode}
}

// Enabled reports whether a listen address is configured.
func (c ServerConfig) Enabled() bool { return c.ListenAddr != "" }
