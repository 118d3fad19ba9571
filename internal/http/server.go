package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"assistente/internal/assistant"
	"assistente/internal/cache"
	"assistente/internal/core"
	"assistente/internal/ledger"
	applog "assistente/internal/log"
	"assistente/internal/middleware/ratelimit"
	"assistente/internal/middleware/security"
	"assistente/internal/middleware/trace"
	appweb "assistente/web"
)

const (
	replyCacheSize      = 1000
	cacheCleanupEvery   = time.Minute
	defaultDedupeTTL    = 10 * time.Minute
	healthCheckTimeout  = 2 * time.Second
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// MessageHandler answers one chat message. *assistant.Assistant implements it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID, text string) (assistant.Reply, error)
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Production         bool
	Clock              core.Clock
	Logger             *applog.Logger
	RateLimitPerMinute int
	DedupeTTL          time.Duration
	TrustedProxies     []string
}

// Server is the webhook and status server.
type Server struct {
	http.Server
	templates *template.Template
	messages  MessageHandler
	stats     ledger.Stats
	clock     core.Clock
	logger    *applog.Logger
	events    *applog.StructuredLogger

	production bool

	// replies to already answered MessageSids, so Twilio retries never record twice
	replies  *cache.LRUCache[assistant.Reply]
	caches   *cache.Manager
	inflight singleflight.Group

	// limiter is keyed by client IP and guards the GET routes. Webhook
	// deliveries all come from the provider's egress addresses, so they are
	// limited per sender instead.
	limiter  *ratelimit.Limiter
	senders  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, messages MessageHandler, stats ledger.Stats, opts Options) (*Server, error) {
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.DedupeTTL <= 0 {
		opts.DedupeTTL = defaultDedupeTTL
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	logger := opts.Logger.WithComponent(applog.ComponentWebhook)
	s := &Server{
		templates:  t,
		messages:   messages,
		stats:      stats,
		clock:      opts.Clock,
		logger:     logger,
		events:     applog.NewStructuredLogger(logger),
		production: opts.Production,
		replies:    cache.NewLRUCache[assistant.Reply](replyCacheSize, opts.DedupeTTL),
		caches:     cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		senders: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		detector: detector,
		tracer:   trace.NewMiddleware(opts.Logger, detector.ExtractClientIP),
	}
	s.caches.Register(s.replies)
	s.caches.StartCleanup(cacheCleanupEvery)

	mux := http.NewServeMux()
	byIP := s.limiter.Middleware(detector.ExtractClientIP, nil)
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.Handle("GET /{$}", byIP(http.HandlerFunc(s.handleIndex)))
	mux.Handle("GET /status", byIP(http.HandlerFunc(s.handleStatus)))
	mux.Handle("GET /health", byIP(http.HandlerFunc(s.handleHealth)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		s.senders.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) environment() string {
	if s.production {
		return "production"
	}
	return "development"
}
