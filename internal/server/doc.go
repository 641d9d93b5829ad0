// Package server runs the mirror daemon: the feed API HTTP server and the
// background workers, with signal handling and graceful shutdown.
package server
