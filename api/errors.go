package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/dwp"
)

var statusCodes = []struct {
	err    error
	status int
}{
	{dialog.ErrWorkflowNotFound, http.StatusNotFound},
	{dialog.ErrWorkflowTypeNotFound, http.StatusNotFound},
	{dialog.ErrNamespaceNotFound, http.StatusNotFound},
	{dialog.ErrNotAwaitingAnswer, http.StatusConflict},
	{dialog.ErrWorkflowFinished, http.StatusConflict},
	{dialog.ErrUnauthorized, http.StatusUnauthorized},
	{dialog.ErrRateLimited, http.StatusTooManyRequests},
	{dialog.ErrUnreachable, http.StatusBadGateway},
	{dialog.ErrRegistryClosed, http.StatusServiceUnavailable},
}

// StatusCode returns the HTTP status for an error returned by the hub.
func StatusCode(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// handleError renders hub errors as a dwp.ErrorDetail so clients can map
// the reason back to a dialog sentinel. echo's own errors (bind failures,
// unknown routes) keep the default rendering.
func (a *API) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		c.Echo().DefaultHTTPErrorHandler(he, c)
		return
	}

	detail := dwp.DetailFromError(err)
	detail.Code = StatusCode(err)
	if detail.Code == http.StatusInternalServerError {
		a.logger.Error("request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		detail.Message = http.StatusText(detail.Code)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(detail.Code)
	} else {
		writeErr = c.JSON(detail.Code, detail)
	}
	if writeErr != nil {
		a.logger.Warn("failed to write error response", slog.String("error", writeErr.Error()))
	}
}
