package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stablebook/internal/reservations/service"
	"stablebook/pkg/auth"
	apperrors "stablebook/pkg/errors"
	"stablebook/pkg/logger"
	"stablebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type fakeService struct {
	createBatch func(ctx context.Context, caller *auth.Caller, req *model.BatchRequest) ([]*model.ReservationDetail, error)
	list        func(ctx context.Context, caller *auth.Caller, query service.ListQuery) ([]*model.ReservationView, int64, error)
	getByID     func(ctx context.Context, caller *auth.Caller, id string) (*model.Reservation, error)
}

func (f *fakeService) CreateBatch(ctx context.Context, caller *auth.Caller, req *model.BatchRequest) ([]*model.ReservationDetail, error) {
	return f.createBatch(ctx, caller, req)
}

func (f *fakeService) List(ctx context.Context, caller *auth.Caller, query service.ListQuery) ([]*model.ReservationView, int64, error) {
	return f.list(ctx, caller, query)
}

func (f *fakeService) GetByID(ctx context.Context, caller *auth.Caller, id string) (*model.Reservation, error) {
	return f.getByID(ctx, caller, id)
}

func newRouter(svc service.ReservationService) *httprouter.Router {
	router := httprouter.New()
	NewReservationHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string, caller *auth.Caller) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if caller != nil {
		req = req.WithContext(auth.WithCaller(req.Context(), caller))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	TotalCount int64           `json:"total_count"`
	Limit      int             `json:"limit"`
	Offset     int64           `json:"offset"`
	Error      string          `json:"error"`
	Code       string          `json:"code"`
	Details    map[string]any  `json:"details"`
}

func decode(t *testing.T, res *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

const batchBody = `{
	"stable_id": "65f000000000000000000001",
	"start_time": "2026-03-01T10:00:00Z",
	"end_time": "2026-03-01T12:00:00Z",
	"payment_method": "card",
	"riders": [{"horse_id": "65f000000000000000000002", "rider_id": "65f000000000000000000003"}]
}`

func TestCreateBatch_PassesCallerAndReturnsCreated(t *testing.T) {
	caller := &auth.Caller{UserID: "65f000000000000000000003", Role: model.RoleRider}
	var gotCaller *auth.Caller
	var gotReq *model.BatchRequest
	svc := &fakeService{
		createBatch: func(_ context.Context, c *auth.Caller, req *model.BatchRequest) ([]*model.ReservationDetail, error) {
			gotCaller, gotReq = c, req
			return []*model.ReservationDetail{{}}, nil
		},
	}

	res := serve(newRouter(svc), http.MethodPost, "/api/v1/reservations/batch", batchBody, caller)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if gotCaller != caller {
		t.Errorf("caller not forwarded to service")
	}
	if gotReq == nil || len(gotReq.Riders) != 1 || gotReq.StableID != "65f000000000000000000001" {
		t.Errorf("unexpected request passed to service: %+v", gotReq)
	}
	var data []json.RawMessage
	if err := json.Unmarshal(decode(t, res).Data, &data); err != nil || len(data) != 1 {
		t.Errorf("expected one created reservation, got %v (%v)", data, err)
	}
}

func TestCreateBatch_BodyErrors(t *testing.T) {
	svc := &fakeService{
		createBatch: func(context.Context, *auth.Caller, *model.BatchRequest) ([]*model.ReservationDetail, error) {
			t.Fatal("service must not be called for a bad body")
			return nil, nil
		},
	}
	router := newRouter(svc)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"stable_id":`},
		{name: "unknown field", body: `{"stable_id":"x","horse":"y"}`},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := serve(router, http.MethodPost, "/api/v1/reservations/batch", tt.body, nil)
			if res.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", res.Code)
			}
			if env := decode(t, res); env.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, env.Code)
			}
		})
	}
}

func TestCreateBatch_ServiceErrorsUseEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantRule   string
	}{
		{
			name:       "business rule",
			err:        apperrors.BusinessRule("overlap", "Pair 1: horse is already booked").WithDetails(map[string]any{"pair_index": 1}),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeBusinessRule,
			wantRule:   "overlap",
		},
		{
			name:       "payment restricted",
			err:        apperrors.PaymentRestricted("Cash payment is limited to trusted riders"),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   apperrors.CodePaymentRestricted,
		},
		{
			name:       "unauthenticated",
			err:        apperrors.Unauthorized("Authentication required"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.CodeUnauthorized,
		},
		{
			name:       "transient",
			err:        apperrors.Transient("Reservation store is busy, retry", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				createBatch: func(context.Context, *auth.Caller, *model.BatchRequest) ([]*model.ReservationDetail, error) {
					return nil, tt.err
				},
			}
			res := serve(newRouter(svc), http.MethodPost, "/api/v1/reservations/batch", batchBody, nil)
			if res.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, res.Code)
			}
			env := decode(t, res)
			if env.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, env.Code)
			}
			if env.Error == "" {
				t.Errorf("expected a human readable message")
			}
			if tt.wantRule != "" && env.Details["rule"] != tt.wantRule {
				t.Errorf("expected rule %s, got %v", tt.wantRule, env.Details["rule"])
			}
		})
	}
}

func TestList_ParsesQuery(t *testing.T) {
	var got service.ListQuery
	svc := &fakeService{
		list: func(_ context.Context, _ *auth.Caller, query service.ListQuery) ([]*model.ReservationView, int64, error) {
			got = query
			return []*model.ReservationView{{}, {}}, 7, nil
		},
	}

	res := serve(newRouter(svc), http.MethodGet,
		"/api/v1/reservations?owner_only=true&stable_id=%2065F000000000000000000001&status=Confirmed,pending,confirmed&limit=2&offset=4", "", nil)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if !got.OwnerOnly || got.StableID != "65f000000000000000000001" {
		t.Errorf("unexpected selector: %+v", got)
	}
	if len(got.Statuses) != 2 || got.Statuses[0] != "confirmed" || got.Statuses[1] != "pending" {
		t.Errorf("unexpected statuses: %v", got.Statuses)
	}
	if got.Limit != 2 || got.Offset != 4 {
		t.Errorf("unexpected page: limit=%d offset=%d", got.Limit, got.Offset)
	}

	env := decode(t, res)
	if env.TotalCount != 7 || env.Limit != 2 || env.Offset != 4 {
		t.Errorf("unexpected pagination envelope: %+v", env)
	}
}

func TestList_InvalidQuery(t *testing.T) {
	svc := &fakeService{
		list: func(context.Context, *auth.Caller, service.ListQuery) ([]*model.ReservationView, int64, error) {
			t.Fatal("service must not be called for a bad query")
			return nil, 0, nil
		},
	}
	router := newRouter(svc)

	for _, target := range []string{
		"/api/v1/reservations?limit=abc",
		"/api/v1/reservations?offset=-x",
		"/api/v1/reservations?owner_only=maybe",
	} {
		t.Run(target, func(t *testing.T) {
			res := serve(router, http.MethodGet, target, "", nil)
			if res.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", res.Code)
			}
		})
	}
}

func TestList_AnonymousGetsEmptyPage(t *testing.T) {
	svc := &fakeService{
		list: func(_ context.Context, caller *auth.Caller, _ service.ListQuery) ([]*model.ReservationView, int64, error) {
			if caller != nil {
				t.Errorf("expected anonymous caller")
			}
			return []*model.ReservationView{}, 0, nil
		},
	}

	res := serve(newRouter(svc), http.MethodGet, "/api/v1/reservations", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if env := decode(t, res); string(env.Data) != "[]" || env.TotalCount != 0 {
		t.Errorf("expected empty page, got data=%s total=%d", env.Data, env.TotalCount)
	}
}

func TestGetByID(t *testing.T) {
	caller := &auth.Caller{UserID: "65f000000000000000000003", Role: model.RoleRider}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "found", wantStatus: http.StatusOK},
		{name: "not found", err: apperrors.NotFoundWithID("Reservation", "65f000000000000000000009"), wantStatus: http.StatusNotFound},
		{name: "forbidden", err: apperrors.Forbidden("Reservation belongs to another rider"), wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			svc := &fakeService{
				getByID: func(_ context.Context, _ *auth.Caller, id string) (*model.Reservation, error) {
					gotID = id
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Reservation{ID: id}, nil
				},
			}

			res := serve(newRouter(svc), http.MethodGet, "/api/v1/reservations/id/65F000000000000000000009", "", caller)
			if res.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, res.Code)
			}
			if gotID != "65f000000000000000000009" {
				t.Errorf("expected sanitized id, got %q", gotID)
			}
		})
	}
}
