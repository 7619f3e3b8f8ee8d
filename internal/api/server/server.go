package server

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"
)

// New builds the HTTP server for the notification API. Read and write
// timeouts bound slow clients; delivery work never runs on request
// goroutines, so short limits are safe.
func New(addr string, router *ginext.Engine, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}
