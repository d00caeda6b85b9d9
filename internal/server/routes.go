package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Event relay endpoints
	s.echo.POST("/events/send", s.handleSendEvent)
	s.echo.GET("/events", s.handleSubscribeSSE)
	s.echo.GET("/ws", s.handleSubscribeWS)

	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Landing page and fallback for anything unmatched
	s.echo.GET("/", func(c echo.Context) error {
		return c.File(s.indexPath)
	})
	s.echo.RouteNotFound("/*", func(c echo.Context) error {
		return c.File(s.fallbackPath)
	})
}
