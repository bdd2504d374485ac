package httpserver

import (
	"net/http"
	"time"
)

// New builds the portal's HTTP server. The portal serves small JSON payloads
// only, so read and write timeouts are kept tight; the write timeout still
// leaves room for the catalog's retry-with-backoff path on a slow store.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
