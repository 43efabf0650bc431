package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/byteplug/task-tracker/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Passes through echo's own errors (auth failures, 404 from the router).
//   - Treats everything else, including domain errors that escaped their
//     endpoint's declaration, as a server fault: logged internally, opaque
//     to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Declared domain errors are mapped by the dispatcher before they ever
	// get here; one reaching this point is a defect worth flagging as such.
	var de *domain.Error
	if errors.As(err, &de) {
		log.Error().
			Str("code", de.Code).
			Str("path", c.Path()).
			Msg("undeclared domain error escaped its endpoint")
		return http.StatusInternalServerError, "internal server error"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
