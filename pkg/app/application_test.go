package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"stablebook/pkg/auth"
	"stablebook/pkg/config"
	"stablebook/pkg/logger"
	"stablebook/pkg/model"
)

const testSecret = "application-test-secret"

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error {
	return p.err
}

type echoHandler struct{}

func (echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/whoami", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		caller := auth.CallerFromContext(r.Context())
		if caller == nil {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(caller.UserID))
	})
	router.POST("/api/v1/echo", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusCreated)
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 10,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	a := NewApplication(testConfig())
	a.SetApp(echoHandler{}, auth.NewVerifier(testSecret))
	t.Cleanup(a.Shutdown)
	return a
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApp(t)
	token, err := auth.NewVerifier(testSecret).Sign("65f000000000000000000003", model.RoleRider, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name        string
		method      string
		path        string
		auth        string
		contentType string
		wantStatus  int
		wantBody    string
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{name: "health ignores bad token", method: http.MethodGet, path: "/health", auth: "Bearer nope", wantStatus: http.StatusOK},
		{name: "ready without database", method: http.MethodGet, path: "/ready", wantStatus: http.StatusServiceUnavailable},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "anonymous api", method: http.MethodGet, path: "/api/v1/whoami", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "authenticated api", method: http.MethodGet, path: "/api/v1/whoami", auth: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "65f000000000000000000003"},
		{name: "bad token", method: http.MethodGet, path: "/api/v1/whoami", auth: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "post needs json", method: http.MethodPost, path: "/api/v1/echo", wantStatus: http.StatusUnsupportedMediaType},
		{name: "post json", method: http.MethodPost, path: "/api/v1/echo", contentType: "application/json", wantStatus: http.StatusCreated},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nothing", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			res := httptest.NewRecorder()
			a.Handler().ServeHTTP(res, req)

			if res.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, res.Code, res.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(res.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %q", tt.wantBody, res.Body.String())
			}
		})
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
	}{
		{name: "ping ok", db: fakePinger{}, wantStatus: http.StatusOK},
		{name: "ping fails", db: fakePinger{err: errors.New("no primary")}, wantStatus: http.StatusServiceUnavailable},
		{name: "no database", db: nil, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(tt.db, logger.Discard()).RegisterRoutes(router)

			res := httptest.NewRecorder()
			router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if res.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, res.Code)
			}
		})
	}
}

func TestApplication_ShutdownRunsHooksInOrder(t *testing.T) {
	a := NewApplication(testConfig())
	a.SetApp(echoHandler{}, auth.NewVerifier(testSecret))

	var order []string
	a.OnShutdown("dispatcher", func(context.Context) error {
		order = append(order, "dispatcher")
		return nil
	})
	a.OnShutdown("producer", func(context.Context) error {
		order = append(order, "producer")
		return errors.New("already closed")
	})
	a.OnShutdown("last", func(context.Context) error {
		order = append(order, "last")
		return nil
	})

	a.Shutdown()

	if strings.Join(order, ",") != "dispatcher,producer,last" {
		t.Errorf("unexpected hook order: %v", order)
	}
}
