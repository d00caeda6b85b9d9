package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iamdejan/visa-tracker-sse/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness reports ready as soon as the topic exists: the relay has
// no external dependencies to probe.
func (s *Server) handleReadiness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ready",
		"listeners": s.topic.ListenerCount(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
