package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/metrics"
	"github.com/neu-csye6225/webapp/internal/pkg/httputils"
	"github.com/neu-csye6225/webapp/internal/service"
)

type HealthHandler struct {
	health  service.HealthService
	metrics metrics.Instrumentation
	log     zerolog.Logger
}

func NewHealthHandler(health service.HealthService, inst metrics.Instrumentation, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		health:  health,
		metrics: inst,
		log:     log.With().Str("component", "health_handler").Logger(),
	}
}

func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", h.check("health_check")).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.methodNotAllowed("health_check"))

	router.HandleFunc("/cicd", h.check("cicd_endpoint")).Methods(http.MethodGet)
	router.HandleFunc("/cicd", h.methodNotAllowed("cicd_endpoint"))
}

// @Summary Health check
// @Description Writes a health_check row; the request must carry no body or query
// @Tags system
// @Success 200
// @Failure 400
// @Failure 503
// @Router /healthz [get]
func (h *HealthHandler) check(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.metrics.Count(metrics.API(name + ".count"))

		_ = metrics.Time(h.metrics, metrics.API(name), func() error {
			if r.ContentLength > 0 || len(r.URL.Query()) > 0 {
				h.log.Warn().Str("path", r.URL.Path).Msg("health check rejected due to request body or parameters")
				httputils.ResponseStatus(w, http.StatusBadRequest)
				return nil
			}

			if err := h.health.Check(r.Context()); err != nil {
				h.log.Warn().Err(err).Msg("unhealthy")
				httputils.ResponseStatus(w, http.StatusServiceUnavailable)
				return nil
			}

			httputils.ResponseStatus(w, http.StatusOK)
			return nil
		})
	}
}

func (h *HealthHandler) methodNotAllowed(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.log.Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("method not allowed")
		h.metrics.Count(metrics.API(name + "_method_not_allowed.count"))
		httputils.ResponseStatus(w, http.StatusMethodNotAllowed)
	}
}
