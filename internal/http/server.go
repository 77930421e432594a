// Package http serves the PennyPal JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pennypal/internal/auth"
	"pennypal/internal/log"
	"pennypal/internal/middleware/ratelimit"
	"pennypal/internal/middleware/security"
	"pennypal/internal/middleware/trace"
	"pennypal/internal/services"
)

// Services are the application services behind the handlers.
type Services struct {
	Users      *services.UserService
	Categories *services.CategoryService
	Expenses   *services.ExpenseService
	Incomes    *services.IncomeService
	Reports    *services.ReportService
	Summary    *services.SummaryService
	Activity   *services.ActivityService
}

type Options struct {
	Logger   *log.Logger
	Sessions *auth.Sessions
	// Google is nil when Google sign-in is not configured.
	Google *auth.GoogleProvider
	// LoginRedirect is where the browser lands after Google sign-in.
	LoginRedirect  string
	CORSOrigins    []string
	TrustedProxies []string
	// RateLimit is the number of mutating requests per client per minute.
	RateLimit int
	// Ready reports whether storage is reachable.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	svc      Services
	logger   *log.Logger
	sessions *auth.Sessions
	google   *auth.GoogleProvider
	redirect string
	ready    func(ctx context.Context) error
	now      func() time.Time

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware into a ready-to-run http.Server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	redirect := opts.LoginRedirect
	if redirect == "" {
		redirect = "/"
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	limits := ratelimit.DefaultConfig()
	if opts.RateLimit > 0 {
		limits.RequestsPerMinute = opts.RateLimit
	}

	s := &Server{
		svc:      svc,
		logger:   logger.WithComponent(log.ComponentHTTP),
		sessions: opts.Sessions,
		google:   opts.Google,
		redirect: redirect,
		ready:    opts.Ready,
		now:      time.Now,
		limiter:  ratelimit.NewLimiter(limits),
		detector: detector,
	}
	s.tracer = trace.NewMiddleware(logger, detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = security.NewCORS(security.DefaultCORSConfig(opts.CORSOrigins)).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("POST /api/auth/register", s.mutation(s.handleRegister))
	mux.Handle("POST /api/auth/login", s.mutation(s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/google", s.handleGoogleBegin)
	mux.HandleFunc("GET /api/auth/google/callback", s.handleGoogleCallback)
	mux.Handle("GET /api/auth/me", s.authed(s.handleMe))

	mux.Handle("GET /api/profile", s.authed(s.handleMe))
	mux.Handle("PUT /api/profile", s.authed(s.mutation(s.handleUpdateProfile)))

	mux.Handle("GET /api/categories", s.authed(s.handleListCategories))
	mux.Handle("POST /api/categories", s.authed(s.mutation(s.handleCreateCategory)))
	mux.Handle("PUT /api/categories/{id}", s.authed(s.mutation(s.handleRenameCategory)))
	mux.Handle("DELETE /api/categories/{id}", s.authed(s.mutation(s.handleDeleteCategory)))

	mux.Handle("GET /api/expenses", s.authed(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.authed(s.mutation(s.handleCreateExpense)))
	mux.Handle("GET /api/expenses/{id}", s.authed(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", s.authed(s.mutation(s.handleUpdateExpense)))
	mux.Handle("DELETE /api/expenses/{id}", s.authed(s.mutation(s.handleDeleteExpense)))
	mux.Handle("GET /api/expenses/{id}/receipt", s.authed(s.handleExpenseReceipt))

	mux.Handle("GET /api/incomes", s.authed(s.handleListIncomes))
	mux.Handle("POST /api/incomes", s.authed(s.mutation(s.handleCreateIncome)))
	mux.Handle("GET /api/incomes/{id}", s.authed(s.handleGetIncome))
	mux.Handle("PUT /api/incomes/{id}", s.authed(s.mutation(s.handleUpdateIncome)))
	mux.Handle("DELETE /api/incomes/{id}", s.authed(s.mutation(s.handleDeleteIncome)))

	mux.Handle("GET /api/reports/expenses/monthly", s.authed(s.handleMonthlyReport))
	mux.Handle("GET /api/reports/expenses/monthly/pdf", s.authed(s.handleMonthlyReportPDF))

	mux.Handle("GET /api/summary", s.authed(s.handleSummary))
	mux.Handle("GET /api/summary/monthly", s.authed(s.handleMonthlySummary))
	mux.Handle("GET /api/summary/alerts", s.authed(s.handleAlert))

	mux.Handle("GET /api/activity", s.authed(s.handleActivity))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Route not found").Write(w)
	})
}

// authed requires a valid session.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return s.sessions.Require(func(w http.ResponseWriter, r *http.Request) {
		UnauthorizedError("Authentication required").Write(w)
	})(h)
}

// mutation applies the per-client rate limit.
func (s *Server) mutation(h http.HandlerFunc) http.HandlerFunc {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})(h)
	return limited.ServeHTTP
}

// Metrics is a snapshot of the request counters.
type Metrics struct {
	Requests trace.Metrics
	Limited  ratelimit.Metrics
	Security security.DetectionMetrics
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Requests: s.tracer.GetMetrics(),
		Limited:  s.limiter.GetMetrics(),
		Security: s.detector.GetMetrics(),
	}
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "storage unavailable").Write(w)
			return
		}
	}
	NewResponse().Data(map[string]string{"status": "ready"}).Write(w)
}
