// Package app contains the JSON API front-end.
package app

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"github.com/influxdata/influxdb/pkg/snowflake"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/scribe/internal/blog"
	"github.com/stolasapp/scribe/internal/config"
	"github.com/stolasapp/scribe/internal/sec"
)

// maxBodySize limits request bodies after decompression; posts are plain text.
const maxBodySize = "1M"

// New creates the API server.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	svc *blog.Service,
	creds *sec.Credentials,
) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.Debug = cfg.DevMode
	srv.HTTPErrorHandler = errorHandler(logger)

	ids := snowflake.New(rand.IntN(1023)) //nolint:gosec,mnd // this isn't for crypto
	srv.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: func() string { return strconv.FormatUint(ids.Next(), 36) }, //nolint:mnd // compact ids
		}),
		logRequests(logger),
		middleware.Secure(),
		middleware.Decompress(),
		middleware.BodyLimit(maxBodySize),
		middleware.Gzip(),
	)

	handler{svc: svc}.register(srv, sec.RequireUser(creds))
	return srv
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// errorHandler renders errors as {"error": message}. Server errors are logged
// and their cause is never sent to the client.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := &echo.HTTPError{}
		if !errors.As(toHTTPError(err), &httpErr) {
			httpErr = echo.NewHTTPError(http.StatusInternalServerError)
		}
		msg := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok && httpErr.Code < http.StatusInternalServerError {
			msg = text
		}

		if httpErr.Code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.String("route", c.Path()),
				slog.Any("error", err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.Code)
		} else {
			err = c.JSON(httpErr.Code, errorBody{Error: msg})
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", slog.Any("error", err))
		}
	}
}

// toHTTPError converts an error to an Echo HTTPError with the appropriate
// HTTP status code. ConnectRPC errors are mapped to their corresponding HTTP
// status codes with their message as the public text; other errors pass
// through unchanged.
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}

	// Already an HTTP error - pass through
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var connErr *connect.Error
	if !errors.As(err, &connErr) {
		return err
	}
	status := connectCodeToHTTPStatus(connErr.Code())
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status).SetInternal(err)
	}
	return echo.NewHTTPError(status, connErr.Message()).SetInternal(err)
}

// connectCodeToHTTPStatus maps ConnectRPC error codes to HTTP status codes.
// Duplicates are reported as bad requests rather than conflicts, matching
// what existing clients of the API expect.
// See: https://connectrpc.com/docs/protocol/#error-codes
func connectCodeToHTTPStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeOutOfRange,
		connect.CodeAlreadyExists:
		return http.StatusBadRequest // 400
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized // 401
	case connect.CodePermissionDenied:
		return http.StatusForbidden // 403
	case connect.CodeNotFound:
		return http.StatusNotFound // 404
	case connect.CodeCanceled:
		return http.StatusRequestTimeout // 408
	case connect.CodeAborted:
		return http.StatusConflict // 409
	case connect.CodeResourceExhausted:
		return http.StatusTooManyRequests // 429
	case connect.CodeUnimplemented:
		return http.StatusNotImplemented // 501
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable // 503
	case connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return nil
		}
	}
}
