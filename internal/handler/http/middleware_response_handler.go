// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

var errHijackUnsupported = errors.New("response writer does not support hijacking")

// responseWriter is a thin decorator around [http.ResponseWriter] that
// records the status code and the number of body bytes written, for the
// access log.
//
// WriteHeader is forwarded to the underlying writer exactly once; later calls
// are ignored.
type responseWriter struct {
	http.ResponseWriter

	// status is zero until WriteHeader (or an implicit WriteHeader via Write)
	// is called.
	status      int
	wroteHeader bool
	size        int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Hijack hands the connection over to the journal stream. The logged status
// of a hijacked request is 101 Switching Protocols.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackUnsupported
	}
	w.status = http.StatusSwitchingProtocols
	w.wroteHeader = true
	return hijacker.Hijack()
}

func (w *responseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
