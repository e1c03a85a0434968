package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"activity-insights/internal/analysis"
	"activity-insights/internal/observability"
	"activity-insights/internal/service"
	"activity-insights/internal/store"
)

// Options configures the HTTP layer
type Options struct {
	RateLimitBurst    int
	RateLimitInterval time.Duration // one token per interval
	AllowedOrigins    []string
	MaxUploadBytes    int64
	AccessLog         io.Writer              // nil disables access logging
	Metrics           *observability.Metrics // nil disables /metrics
	TrustProxyHeaders bool                   // take the client address from X-Forwarded-For / X-Real-IP
	Clock             analysis.Clock         // report timestamps; nil means the system clock
}

// Server holds the dependencies of the HTTP handlers
type Server struct {
	store   *store.DB
	query   *service.QueryService
	imports *service.ImportService
	opts    Options
	log     *slog.Logger
}

// NewServer creates the API server
func NewServer(db *store.DB, query *service.QueryService, imports *service.ImportService, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = analysis.SystemClock
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{
		store:   db,
		query:   query,
		imports: imports,
		opts:    opts,
		log:     log.With(slog.String("component", "api")),
	}
}

// NewRouter registers the API routes
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	if m := s.opts.Metrics; m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{user_id}", s.getUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id}/activities", s.listActivities).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id}/report.xlsx", s.exportReport).Methods(http.MethodGet)
	r.HandleFunc("/activities/{activity_id}", s.getActivity).Methods(http.MethodGet)
	r.HandleFunc("/trackpoints/{activity_id}", s.getTrackPoints).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.upload).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Handler returns the router wrapped in the middleware chain.
// Outermost first: recovery, access log, proxy headers (when trusted),
// CORS, security headers, rate limit, trailing-slash trim.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.NewRouter()
	h = trimTrailingSlash(h)
	if s.opts.RateLimitBurst > 0 && s.opts.RateLimitInterval > 0 {
		h = newClientLimiter(s.opts.RateLimitBurst, s.opts.RateLimitInterval, s.opts.Metrics.RateLimited).middleware(h)
	}
	h = securityHeaders(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(s.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	if s.opts.TrustProxyHeaders {
		h = handlers.ProxyHeaders(h)
	}
	if s.opts.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(s.opts.AccessLog, h)
	}
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.log}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

// recoveryLogger routes recovered panics into slog
type recoveryLogger struct {
	log *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error("panic_recovered", slog.Any("panic", v))
}
