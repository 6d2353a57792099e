package server

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	appmiddleware "github.com/nfrund/applydash/internal/middleware"
)

// setupErrorHandling installs an error handler that logs unhandled errors
// with a stack trace and answers with a plain status.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		logger := appmiddleware.FromContext(c.Request().Context())

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Internal != nil {
				logger.Warn("Request failed", "status", he.Code, "error", he.Internal)
			}
			respond(c, he.Code, he.Message)
			return
		}

		logger.Error("Internal Server Error (Unhandled)",
			"error", err,
			"stack_trace", string(debug.Stack()),
		)
		respond(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func respond(c echo.Context, code int, message any) {
	var err error
	switch {
	case c.Request().Method == http.MethodHead:
		err = c.NoContent(code)
	case c.Request().Header.Get("HX-Request") == "true":
		err = c.String(code, toText(message))
	default:
		err = c.JSON(code, map[string]any{"message": message})
	}
	if err != nil {
		appmiddleware.FromContext(c.Request().Context()).Error("Failed to write error response", "error", err)
	}
}

func toText(message any) string {
	if s, ok := message.(string); ok {
		return s
	}
	return http.StatusText(http.StatusInternalServerError)
}
