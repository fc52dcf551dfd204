package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

var (
	uuidSegment   = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	numberSegment = regexp.MustCompile(`/\d+`)
	routeVariable = regexp.MustCompile(`\{([^{}:]+):[^{}]*\}`)
)

// NormalizePath turns a request path into a metric name fragment:
// "/v1/file/<uuid>" becomes "v1.file.{id}".
func NormalizePath(path string) string {
	path = uuidSegment.ReplaceAllString(path, "/{id}")
	path = numberSegment.ReplaceAllString(path, "/{id}")
	path = strings.ReplaceAll(path, "/", ".")
	return strings.TrimPrefix(path, ".")
}

// routeName names the request after the route template it matched, so every
// id or swagger asset under one route shares a metric. NormalizePath is used
// only when no template is available.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			tmpl = routeVariable.ReplaceAllString(tmpl, "{$1}")
			return strings.Trim(strings.ReplaceAll(tmpl, "/", "."), ".")
		}
	}
	return NormalizePath(r.URL.Path)
}

// RequestMetrics tags every request with an id, logs it, and records a
// counter and a timing under api.<method>.<normalized path>. Responses with a
// 5xx status are also counted as errors.
func RequestMetrics(inst metrics.Instrumentation, log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = "req-" + uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			name := metrics.API(strings.ToLower(r.Method) + "." + routeName(r))
			reqLog := log.With().Str("request_id", requestID).Logger()

			reqLog.Info().Str("method", r.Method).Str("uri", r.URL.RequestURI()).Msg("incoming request")
			inst.Count(name + ".count")

			m := httpsnoop.CaptureMetrics(next, w, r.WithContext(reqLog.WithContext(r.Context())))

			inst.Observe(name, m.Duration)
			if m.Code >= http.StatusInternalServerError {
				inst.Count(name + ".error")
			}

			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", m.Code).
				Dur("duration", m.Duration).
				Int64("bytes", m.Written).
				Msg("request completed")
		})
	}
}
