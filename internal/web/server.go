package web

import "context"

type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// NoopServer is used when the status API is disabled.
type NoopServer struct{}

func (NoopServer) Start(context.Context) error { return nil }
func (NoopServer) Stop() error                 { return nil }
