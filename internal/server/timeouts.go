// internal/server/timeouts.go
//
// HTTP server helper with config-driven timeouts.
//
// Keys (seconds), with defaults:
//
//   • web.readTimeout   – abort slow-loris headers (10 s)
//   • web.writeTimeout  – cap total response time (15 s)
//   • web.idleTimeout   – close keep-alives on idle clients (60 s)
//
// Addr resolves web.address and web.port the same way, so cmd code never
// hard-codes a listen address.

package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/yanizio/confchain/internal/config"
)

const (
	defaultPort         = 8082
	defaultReadTimeout  = 10
	defaultWriteTimeout = 15
	defaultIdleTimeout  = 60
)

// Addr returns host:port from web.address (default all interfaces) and
// web.port (default 8082).
func Addr(cfg config.Reader) (string, error) {
	port, err := cfg.IntOr("web.port", defaultPort)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(cfg.String("web.address", ""), strconv.Itoa(port)), nil
}

// New constructs an *http.Server whose timeouts come from cfg.
func New(addr string, handler http.Handler, cfg config.Reader) (*http.Server, error) {
	read, err := seconds(cfg, "web.readTimeout", defaultReadTimeout)
	if err != nil {
		return nil, err
	}
	write, err := seconds(cfg, "web.writeTimeout", defaultWriteTimeout)
	if err != nil {
		return nil, err
	}
	idle, err := seconds(cfg, "web.idleTimeout", defaultIdleTimeout)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}, nil
}

func seconds(cfg config.Reader, key string, def int64) (time.Duration, error) {
	n, err := cfg.Int64Or(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
