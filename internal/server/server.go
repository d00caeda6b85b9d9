// Package server wires the event relay to its HTTP surface: the publish
// endpoint, the SSE and WebSocket subscribe streams, static pages, and
// the observability endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/iamdejan/visa-tracker-sse/internal/config"
	apperrors "github.com/iamdejan/visa-tracker-sse/internal/errors"
	"github.com/iamdejan/visa-tracker-sse/internal/relay"
)

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	topic        *relay.Topic
	clock        clockwork.Clock
	limits       *ConnectionLimits
	indexPath    string
	fallbackPath string
	startTime    time.Time
}

func NewServer(cfg *config.Config, topic *relay.Topic, clock clockwork.Clock) (*Server, error) {
	// Resolve assets once at startup so a missing directory fails fast.
	indexPath := filepath.Join(cfg.AssetsDir, "index.html")
	fallbackPath := filepath.Join(cfg.AssetsDir, "fallback.html")
	for _, path := range []string{indexPath, fallbackPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("missing asset %s: %w", path, err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:   e,
		config: cfg,
		topic:  topic,
		clock:  clock,
		limits: NewConnectionLimits(
			cfg.MaxStreamConnections,
			cfg.MaxStreamConnectionsPerIP,
			cfg.StreamConnectionRate,
			cfg.StreamConnectionBurst,
		),
		indexPath:    indexPath,
		fallbackPath: fallbackPath,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
