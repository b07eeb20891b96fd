package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/core/allocator"
	"github.com/campusworks/seatwise/pkg/core/scoring"
	"github.com/campusworks/seatwise/pkg/db"
)

// httpErrorHandler maps domain errors onto HTTP status codes: quota
// misconfiguration and insufficient training data are client-fixable (422),
// missing rows are 404, anything else is a 500 that never crashes the
// process.
func httpErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := http.StatusText(http.StatusInternalServerError)

		var httpErr *echo.HTTPError
		var cfgErr *allocator.ConfigurationError
		var dataErr *scoring.InsufficientDataError

		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		case errors.As(err, &cfgErr):
			code = http.StatusUnprocessableEntity
			message = cfgErr.Error()
		case errors.As(err, &dataErr):
			code = http.StatusUnprocessableEntity
			message = dataErr.Error()
		case errors.Is(err, db.ErrNotFound):
			code = http.StatusNotFound
			message = "not found"
		}

		if code == http.StatusInternalServerError {
			logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		if !c.Response().Committed {
			if writeErr := c.JSON(code, echo.Map{"error": message}); writeErr != nil {
				logger.Error("Failed to write error response", zap.Error(writeErr))
			}
		}
	}
}
