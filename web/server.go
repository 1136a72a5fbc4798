// Package web serves the public pages, the read-only JSON API and the staff admin surface.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dhaba/config"
	"dhaba/services"
)

const shutdownTimeout = 10 * time.Second

// Pinger is what /healthz checks.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	addr      string
	catalog   *services.CatalogService
	reviews   *services.ReviewService
	store     Pinger
	throttle  *services.Throttle
	creds     services.AdminCredentials
	site      config.AdminSite
	cors      []string
	realIP    bool
	media     *media
	templates map[string]*template.Template
	registry  *prometheus.Registry
	metrics   *httpMetrics
	api       *api
	log       *zap.Logger
}

func NewServer(cfg *config.Config, store Pinger, catalog *services.CatalogService, reviews *services.ReviewService, log *zap.Logger) (*Server, error) {
	tmpls, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.Admin.PasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty, the admin surface will reject every login")
	}

	return &Server{
		addr:      cfg.HTTP.Addr,
		catalog:   catalog,
		reviews:   reviews,
		store:     store,
		throttle:  services.NewThrottle(cfg.Throttle.AnonPerMinute),
		creds:     services.AdminCredentials{Username: cfg.Admin.Username, PasswordHash: cfg.Admin.PasswordHash},
		site:      cfg.Admin.Site,
		cors:      cfg.HTTP.CORSAllowedOrigins,
		realIP:    cfg.HTTP.TrustProxyHeaders,
		media:     newMedia(cfg.HTTP.BaseURL, cfg.HTTP.MediaURL, cfg.HTTP.MediaRoot),
		templates: tmpls,
		registry:  reg,
		metrics:   newHTTPMetrics(reg),
		api:       &api{log: log},
		log:       log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	if s.realIP {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Recoverer,
		requestLogger(s.log),
		s.metrics.Middleware,
		cors(s.cors),
	)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Get("/", s.handleHome)
	for _, p := range []string{"/menu", "/menu/"} {
		r.Get(p, s.handleMenuPage)
	}
	for _, p := range []string{"/about", "/about/"} {
		r.Get(p, s.handleAbout)
	}
	for _, p := range []string{"/contact", "/contact/"} {
		r.Get(p, s.handleContact)
	}
	if s.media.servesLocally() {
		r.Get(s.media.prefix+"*", s.media.Handler().ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(throttleAnon(s.throttle, s.api))
		r.Get("/categories", s.handleCategories)
		r.Get("/menu", s.handleMenu)
		r.Get("/featured", s.handleFeatured)
	})

	r.Route("/admin", s.adminRoutes)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.PingContext(ctx); err != nil {
		s.log.Warn("Health check failed", zap.Error(err))
		s.api.Respond(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.api.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Listening", zap.String("addr", s.addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
