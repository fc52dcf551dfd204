package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/neu-csye6225/webapp/docs"
	"github.com/neu-csye6225/webapp/internal/handler"
	"github.com/neu-csye6225/webapp/internal/metrics"
)

// RouteRegistrar is implemented by every handler that owns routes.
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

type Server struct {
	router  *mux.Router
	handler http.Handler
	log     zerolog.Logger
}

func NewServer(inst metrics.Instrumentation, metricsHandler http.Handler, log zerolog.Logger, registrars ...RouteRegistrar) *Server {
	router := mux.NewRouter()
	router.Use(handler.RequestMetrics(inst, log))

	for _, r := range registrars {
		r.RegisterRoutes(router)
	}

	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With", handler.RequestIDHeader}),
	)
	corsRouter := cors(router)
	// only browser requests go through CORS, so a bare OPTIONS still reaches the 405 routes
	withCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") == "" {
			router.ServeHTTP(w, r)
			return
		}
		corsRouter.ServeHTTP(w, r)
	})

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log}),
		handlers.PrintRecoveryStack(true),
	)

	return &Server{
		router:  router,
		handler: recovery(withCORS),
		log:     log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on port until ctx is cancelled, then drains in-flight requests
// for at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, port string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:      s.handler,
		Addr:         ":" + port,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// recoveryLogger adapts zerolog to gorilla/handlers' RecoveryHandlerLogger.
type recoveryLogger struct {
	log zerolog.Logger
}

func (l recoveryLogger) Println(args ...any) {
	l.log.Error().Msg(fmt.Sprint(args...))
}
