package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// AccessLog writes one structured entry per request.  The request id comes
// from echo's RequestID middleware; the trace id is added when the request
// context carries a valid span.
func AccessLog(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now().UTC()

			err := next(c)
			if err != nil {
				// Let echo write the error response so the logged status is final.
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := logrus.Fields{
				"type":       "access",
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      c.Path(),
				"status":     res.Status,
				"bytes_out":  res.Size,
				"latency":    time.Since(start).String(),
				"remote_ip":  c.RealIP(),
				"user_agent": req.UserAgent(),
				"user":       userID(c),
				"request_id": res.Header().Get(echo.HeaderXRequestID),
			}
			if sc := trace.SpanContextFromContext(req.Context()); sc.IsValid() {
				fields["trace_id"] = sc.TraceID().String()
			}

			entry := log.WithFields(fields)
			if err != nil {
				entry = entry.WithError(err)
			}
			switch {
			case res.Status >= 500:
				entry.Error("request failed")
			case res.Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return nil
		}
	}
}
