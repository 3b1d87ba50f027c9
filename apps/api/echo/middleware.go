package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/gradebook/services/metrics"
)

// requestDurationMiddleware observes the duration of each request, labelled by route.
func requestDurationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		if err != nil {
			// let the error handler write the status first
			ctx.Error(err)
		}
		metrics.APIRequestDuration.WithLabelValues(
			ctx.Request().Method,
			ctx.Path(),
			strconv.Itoa(ctx.Response().Status),
		).Observe(time.Since(start).Seconds())
		return nil
	}
}
