package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"ventas/internal/cache"
	"ventas/internal/core"
	"ventas/internal/log"
	"ventas/internal/middleware/ratelimit"
	"ventas/internal/middleware/security"
	"ventas/internal/middleware/trace"
	"ventas/internal/services"
	appweb "ventas/web"
)

// DashboardReader computes dashboards over the current snapshot.
type DashboardReader interface {
	Dashboard(ctx context.Context, f core.Filter) (*services.Dashboard, error)
	Salespeople(ctx context.Context) ([]string, error)
}

// CacheStats exposes cache counters for /metrics.
type CacheStats interface {
	Stats() cache.Stats
}

// Options configures the server.
type Options struct {
	Addr           string
	SearchDebounce time.Duration
	// ExportRateRPM limits export downloads per client per minute.
	ExportRateRPM int
	Logger        *log.Logger
	Cache         CacheStats
}

// Server wraps http.Server with the dashboard's dependencies.
type Server struct {
	http.Server
	templates  *template.Template
	dashboards DashboardReader
	snapshots  services.SnapshotProvider
	cache      CacheStats

	searchDebounce time.Duration
	logger         *log.Logger
	sl             *log.StructuredLogger

	traceMiddleware  *trace.Middleware
	securityDetector *security.Detector
	exportLimiter    *ratelimit.Limiter
	startedAt        time.Time
}

// templateFuncs are the formatting helpers available to templates.
var templateFuncs = template.FuncMap{
	"currency":     core.FormatCurrency,
	"nullCurrency": core.FormatNullCurrency,
	"quantity":     core.FormatQuantity,
	"orDash":       core.OrPlaceholder,
}

// ParseTemplates parses the embedded templates.
func ParseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options, dashboards DashboardReader, snapshots services.SnapshotProvider) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.ExportRateRPM <= 0 {
		opts.ExportRateRPM = ratelimit.DefaultConfig().RequestsPerMinute
	}

	t, err := ParseTemplates()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()
	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = opts.ExportRateRPM

	s := &Server{
		templates:        t,
		dashboards:       dashboards,
		snapshots:        snapshots,
		cache:            opts.Cache,
		searchDebounce:   opts.SearchDebounce,
		logger:           logger,
		sl:               log.NewStructuredLogger(logger),
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		securityDetector: detector,
		exportLimiter:    ratelimit.NewLimiter(limiterCfg),
		startedAt:        time.Now(),
	}

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		s.exportLimiter.Stop()
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// UI partials
	mux.HandleFunc("/ui/dashboard", s.handleDashboardPartial)

	// JSON API
	mux.HandleFunc("/api/dashboard", s.handleDashboardJSON)
	mux.HandleFunc("/api/vendedores", s.handleSalespeople)

	// Exports
	limited := s.exportLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError("Demasiadas descargas, intente más tarde").Write(w)
	})
	mux.Handle("/export/lineas.xlsx", limited(security.NoStore(http.HandlerFunc(s.handleExportXLSX))))
	mux.Handle("/export/resumen.pdf", limited(security.NoStore(http.HandlerFunc(s.handleExportPDF))))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.traceMiddleware.Middleware(detector.Middleware(headers.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Shutdown stops background goroutines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.exportLimiter.Stop()
	return s.Server.Shutdown(ctx)
}
