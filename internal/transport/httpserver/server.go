package httpserver

import (
	"net/http"
	"time"

	"family-recipes-go/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
	// writeSlack lets the request timeout middleware answer before the
	// connection deadline cuts it off.
	writeSlack = 5 * time.Second
)

func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.HTTP.RequestTimeout,
		WriteTimeout:      cfg.HTTP.RequestTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
	}
}
