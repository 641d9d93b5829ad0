package adapter

import "errors"

var (
	// ErrTransientNetwork marks failures worth retrying: timeouts, refused
	// connections and 5xx/429 responses.
	ErrTransientNetwork = errors.New("transient network error")
	// ErrStaleBase is returned by Push when the remote item moved past the
	// base stamp of the edit.
	ErrStaleBase = errors.New("stale base stamp")
	// ErrProtocol marks responses that violate the remote contract.
	ErrProtocol = errors.New("protocol error")
	// ErrUnauthorized is returned when the remote rejects the credentials.
	ErrUnauthorized = errors.New("client unauthorized")
	// ErrNotFound is returned by FetchItem for an unknown uid.
	ErrNotFound = errors.New("remote item not found")
)
