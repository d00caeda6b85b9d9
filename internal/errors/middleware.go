package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestErrorsTotal tracks request errors by code.
	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_errors_total",
			Help: "Total request errors by error code",
		},
		[]string{"code"},
	)
)

// Middleware returns an Echo middleware that converts errors returned by
// handlers into the structured {"error":{"code","message"}} envelope.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// Echo's own errors (404 from routing, method not allowed)
			// keep their status codes and default rendering.
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structured := AsError(err)
			RequestErrorsTotal.WithLabelValues(string(structured.Code)).Inc()
			logError(c, structured)

			if c.Response().Committed {
				return nil
			}
			if err := c.JSON(structured.HTTPStatus(), structured.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *Error) {
	attrs := []any{
		"code", err.Code,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}
	if err.Cause != nil {
		attrs = append(attrs, "cause", err.Cause)
	}

	if err.HTTPStatus() == http.StatusInternalServerError {
		slog.Error("Request failed", attrs...)
	} else {
		slog.Info("Request rejected", attrs...)
	}
}
