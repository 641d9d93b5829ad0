// Package http implements the feed API of the mirror daemon.
//
// Exporters and operators read committed items and the change journal,
// stage local edits and trigger or reset sync runs. Request tracing, access
// logging, compression, token authentication and body integrity checks are
// handled here before requests reach the service layer.
package http
