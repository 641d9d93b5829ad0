package server

import "context"

// Server defines the lifecycle contract of the daemon.
type Server interface {
	// RunServer starts serving and blocks until SIGTERM, SIGINT or SIGQUIT
	// arrives, then shuts down gracefully.
	RunServer()

	// Run is RunServer driven by ctx instead of process signals.
	Run(ctx context.Context) error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}
