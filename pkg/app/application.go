package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"stablebook/pkg/config"
	"stablebook/pkg/metrics"
	"stablebook/pkg/middleware"
)

// Handler is implemented by every service's HTTP layer.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

type stopHook struct {
	name string
	fn   func(context.Context) error
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.CallerRateLimiter
	handler          http.Handler
	stopHooks        []stopHook
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp builds the router and middleware chain for appHandler. Probe and
// scrape endpoints bypass authentication and throttling.
func (a *Application) SetApp(appHandler Handler, verifier middleware.TokenVerifier) {
	var db Pinger
	if a.cfg.Client != nil && a.cfg.Client.Mongo != nil {
		db = a.cfg.Client.Mongo
	}

	mux := http.NewServeMux()
	ops := a.opsHandler(db)
	mux.Handle("/health", ops)
	mux.Handle("/ready", ops)
	mux.Handle("/metrics", ops)
	mux.Handle("/", a.appHandler(appHandler, verifier))
	a.handler = mux

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) opsHandler(db Pinger) http.Handler {
	router := httprouter.New()
	NewHealthHandler(db, a.cfg.Log).RegisterRoutes(router)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	var h http.Handler = router
	h = middleware.Recovery(a.cfg.Log)(h)
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery only)")
	return h
}

func (a *Application) appHandler(appHandler Handler, verifier middleware.TokenVerifier) http.Handler {
	router := httprouter.New()
	appHandler.RegisterRoutes(router)

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewCallerRateLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow, a.cfg.Log)

	var h http.Handler = router
	h = middleware.Idempotency(a.idempotencyStore)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.CallerRateLimit(a.rateLimiter)(h)
	h = middleware.Authenticate(verifier, a.cfg.Log)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
	return h
}

// Handler returns the composed HTTP handler. SetApp must run first.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// OnShutdown registers fn to run after the HTTP server has drained. Hooks
// run in registration order.
func (a *Application) OnShutdown(name string, fn func(context.Context) error) {
	a.stopHooks = append(a.stopHooks, stopHook{name: name, fn: fn})
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.Shutdown()
	}
}

// Shutdown drains the server, runs the stop hooks and releases the
// middleware workers.
func (a *Application) Shutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.cfg.Log.Error("Server shutdown failed", "error", err)
			if err := a.server.Close(); err != nil {
				a.cfg.Log.Error("Could not stop server gracefully", "error", err)
			}
		}
	}

	for _, hook := range a.stopHooks {
		if err := hook.fn(ctx); err != nil {
			a.cfg.Log.Error("Stop hook failed", "hook", hook.name, "error", err)
			continue
		}
		a.cfg.Log.Info("Stop hook completed", "hook", hook.name)
	}

	a.cfg.Log.Info("Stopping background workers...")
	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
