package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs each request on completion and records it in the
// request metrics under its route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			latency := time.Since(start)
			route := routePattern(r)
			s.cfg.Metrics.ObserveRequest(route, strconv.Itoa(status), latency)

			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"route", route,
				"status", status,
				"latency", latency,
				"bytes", ww.BytesWritten(),
			}
			switch {
			case status >= http.StatusInternalServerError:
				s.logger.Error("request completed", attrs...)
			case status >= http.StatusBadRequest:
				s.logger.Warn("request completed", attrs...)
			default:
				s.logger.Debug("request completed", attrs...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
