package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pipelinecheck/pkg/audit"
	"github.com/matzehuels/pipelinecheck/pkg/observability"
)

// logRequests logs one line per request, fires the HTTP hooks and passes the
// chi request ID on to audit records.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		ctx := audit.WithRequestID(r.Context(), reqID)
		if reqID != "" {
			w.Header().Set(middleware.RequestIDHeader, reqID)
		}

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, d)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d,
			"request_id", reqID,
			"remote", r.RemoteAddr)
	})
}
