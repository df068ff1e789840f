// internal/receiver/server_test.go
package receiver

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/tamzrod/fatigue-relay/internal/metrics"
	"github.com/tamzrod/fatigue-relay/internal/snapshot"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

const validBody = `{
  "device_id": "driver_001",
  "timestamp": "2025-06-07T08:09:10.5Z",
  "status_code": 2,
  "status_text": "瞌睡",
  "is_alert": true
}`

func newServer(t *testing.T, cfg Config) (*Server, *metrics.Metrics) {
	t.Helper()

	if cfg.SavePath == "" {
		cfg.SavePath = filepath.Join(t.TempDir(), "received_data.json")
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	s, err := New(cfg, zaptest.NewLogger(t), m, reg)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	return s, m
}

func post(s *Server, body string, auth func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		auth(req)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestUpload_SavesSnapshot(t *testing.T) {
	s, m := newServer(t, Config{})

	rec := post(s, validBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}

	got, err := snapshot.Read(s.cfg.SavePath)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if got.DeviceID != "driver_001" || got.StatusCode != status.Drowsy || !got.IsAlert {
		t.Fatalf("unexpected saved snapshot: %+v", got)
	}
	if v := testutil.ToFloat64(m.Uploads.WithLabelValues("200")); v != 1 {
		t.Fatalf("uploads{200}=%v", v)
	}
}

func TestUpload_RejectsBadPayload(t *testing.T) {
	s, _ := newServer(t, Config{})

	cases := map[string]string{
		"not json":     `status=2`,
		"unknown code": `{"device_id":"d","timestamp":"2025-06-07T08:09:10Z","status_code":7,"status_text":"x","is_alert":false}`,
		"inconsistent": `{"device_id":"d","timestamp":"2025-06-07T08:09:10Z","status_code":2,"status_text":"drowsy","is_alert":false}`,
	}
	for name, body := range cases {
		if rec := post(s, body, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: code=%d", name, rec.Code)
		}
	}
}

func TestUpload_BasicAuth(t *testing.T) {
	s, _ := newServer(t, Config{AccessKey: "ak", SecretKey: "sk"})

	if rec := post(s, validBody, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing auth: code=%d", rec.Code)
	}
	if rec := post(s, validBody, func(r *http.Request) { r.SetBasicAuth("ak", "wrong") }); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: code=%d", rec.Code)
	}
	if rec := post(s, validBody, func(r *http.Request) { r.SetBasicAuth("ak", "sk") }); rec.Code != http.StatusOK {
		t.Fatalf("valid auth: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRoutes(t *testing.T) {
	s, _ := newServer(t, Config{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health code=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /upload code=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics code=%d", rec.Code)
	}
}
