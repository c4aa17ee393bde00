package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mab-backend/pkg/common"
	pkgerrors "mab-backend/pkg/errors"
)

// upstreamFailure marks the statuses that count against the breaker.
// Client errors stay out: a stream of 400s says nothing about upstream
// health.
func upstreamFailure(status int) bool {
	return status >= http.StatusInternalServerError
}

// CircuitBreaker wraps the routes that call the Nile API. When
// upstream keeps failing, the breaker opens and requests are answered
// with 503 immediately instead of burning the Lambda timeout on a dead
// upstream.
func CircuitBreaker(name string, logger *zap.Logger) func(next http.Handler) http.Handler {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := cb.Execute(func() (interface{}, error) {
				ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
				next.ServeHTTP(ww, r)
				if upstreamFailure(ww.Status()) {
					return nil, pkgerrors.NewUnavailableError(name)
				}
				return nil, nil
			})

			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				appErr := pkgerrors.NewUnavailableError("nile API")
				common.RespondJSON(w, appErr.HTTPStatus, map[string]interface{}{
					"error":   true,
					"type":    string(appErr.Type),
					"message": appErr.Message,
				})
			}
		})
	}
}
