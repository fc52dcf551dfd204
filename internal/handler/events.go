package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/metrics"
	"github.com/neu-csye6225/webapp/internal/pkg/httputils"
)

// EventsHandler exposes the file event stream over a websocket.
type EventsHandler struct {
	stream  http.Handler
	metrics metrics.Instrumentation
	log     zerolog.Logger
}

func NewEventsHandler(stream http.Handler, inst metrics.Instrumentation, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		stream:  stream,
		metrics: inst,
		log:     log.With().Str("component", "events_handler").Logger(),
	}
}

func (h *EventsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/events", h.subscribe).Methods(http.MethodGet)
	router.HandleFunc("/v1/events", func(w http.ResponseWriter, r *http.Request) {
		h.metrics.Count(metrics.API("events_method_not_allowed.count"))
		httputils.ResponseStatus(w, http.StatusMethodNotAllowed)
	})
}

// @Summary Subscribe to file events
// @Description Websocket stream of file_uploaded and file_deleted events
// @Tags files
// @Success 101
// @Failure 400 {object} httputils.ErrorResponse
// @Router /v1/events [get]
func (h *EventsHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	h.metrics.Count(metrics.API("events_subscribe.count"))

	if !websocket.IsWebSocketUpgrade(r) {
		httputils.ResponseError(w, http.StatusBadRequest, "Websocket upgrade required")
		return
	}

	h.log.Debug().Str("remote", r.RemoteAddr).Msg("event subscriber connected")
	h.stream.ServeHTTP(w, r)
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("event subscriber disconnected")
}
