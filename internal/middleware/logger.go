package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger writes one line per request. 5xx are logged as errors and
// 4xx as warnings.
func RequestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"latency", time.Since(start),
				"ip", r.RemoteAddr,
				"request_id", chimw.GetReqID(r.Context()),
			}
			if r.URL.RawQuery != "" {
				fields = append(fields, "query", r.URL.RawQuery)
			}

			switch status := ww.Status(); {
			case status >= http.StatusInternalServerError:
				logger.Errorw("request completed with server error", fields...)
			case status >= http.StatusBadRequest:
				logger.Warnw("request completed with client error", fields...)
			default:
				logger.Infow("request completed", fields...)
			}
		})
	}
}
