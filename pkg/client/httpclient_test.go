package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHttpClient_POST(t *testing.T) {
	var gotBody map[string]string
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Event-Type")
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewHttpClient(server.URL, time.Second)
	resp, err := c.POST(context.Background(), "/hook", map[string]string{"recipient_id": "u1"}, map[string]string{"X-Event-Type": "reservation.created"})
	if err != nil {
		t.Fatalf("POST() error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if gotBody["recipient_id"] != "u1" || gotHeader != "reservation.created" {
		t.Errorf("server saw body=%v header=%q", gotBody, gotHeader)
	}

	var decoded struct{ OK bool }
	if err := resp.DecodeJSON(&decoded); err != nil || !decoded.OK {
		t.Errorf("DecodeJSON() = %v, %v", decoded, err)
	}
}

func TestHttpClient_RespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewHttpClient(server.URL, time.Second).GET(ctx, "/"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
