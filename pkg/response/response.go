// Package response writes JSON error bodies in the shape every handler uses:
// {"error": "<message>"}.
package response

import (
	"net/http"

	"SchoolManager/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func Error(c echo.Context, logger *zap.Logger, err error) error {
	status := apperr.Status(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Error(err),
		)
		if !apperr.Is(err, apperr.KindTransactionAborted) {
			msg = "internal server error"
		}
	}
	return c.JSON(status, map[string]string{"error": msg})
}

// BadRequest is for malformed request bodies and path parameters.
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
