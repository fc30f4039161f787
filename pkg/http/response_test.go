package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "stablebook/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantRule   string
	}{
		{
			name:       "business rule keeps rule detail",
			err:        apperrors.BusinessRule("overlap", "pair 0: horse already booked"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeBusinessRule,
			wantRule:   "overlap",
		},
		{
			name:       "payment restricted",
			err:        apperrors.PaymentRestricted("cash requires trust"),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   apperrors.CodePaymentRestricted,
		},
		{
			name:       "transient",
			err:        apperrors.Transient("try again", errors.New("write conflict")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeTransient,
		},
		{
			name:       "plain error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError() error = %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if body.Error == "" {
				t.Errorf("error message should not be empty")
			}
			if tt.wantRule != "" && body.Details["rule"] != tt.wantRule {
				t.Errorf("rule = %v, want %s", body.Details["rule"], tt.wantRule)
			}
			if tt.wantStatus == http.StatusServiceUnavailable && rec.Header().Get("Retry-After") == "" {
				t.Errorf("Retry-After header missing on transient failure")
			}
		})
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"defaults", "", 10, 0, false},
		{"explicit", "?limit=5&offset=15", 5, 15, false},
		{"limit capped", "?limit=100000", 100, 0, false},
		{"negative offset", "?offset=-3", 10, 0, false},
		{"bad limit", "?limit=abc", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/reservations"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
