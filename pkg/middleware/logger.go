package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"
)

// Logger logs one line per request. The request id comes from the Context
// middleware, which runs first; contract-scoped requests also carry the
// contract number once a handler has resolved it.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			res := c.Response()
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			ctx := c.Request().Context()
			fields := map[string]any{
				"request_id":    fernctx.GetRequestID(ctx),
				"method":        req.Method,
				"uri":           req.RequestURI,
				"status":        res.Status,
				"route":         c.Path(),
				"remote_ip":     c.RealIP(),
				"user_agent":    req.UserAgent(),
				"response_time": time.Since(start),
				"response_size": res.Size,
			}
			if contractNumber := fernctx.GetContractNumber(ctx); contractNumber != "" {
				fields["contract_number"] = contractNumber
			}

			logger.WithContext(ctx).WithFields(fields).Info("Request")

			return nil
		}
	}
}
