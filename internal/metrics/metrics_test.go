package metrics

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	_ "modernc.org/sqlite"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/songs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})

	for _, path := range []string{"/songs/1", "/songs/2", "/songs/3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/songs/{id}", "418"))
	if got != 3 {
		t.Errorf("expected 3 requests for route pattern, got %v", got)
	}
}

func TestMiddleware_DefaultStatus(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestRecordAuth(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordAuth("login", OutcomeSuccess)
	m.RecordAuth("login", OutcomeFailure)
	m.RecordAuth("login", OutcomeFailure)

	if got := testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues("login", OutcomeFailure)); got != 2 {
		t.Errorf("expected 2 failures, got %v", got)
	}
	if got := testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues("login", OutcomeSuccess)); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
}

func TestRecordPlaylistChange(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPlaylistChange("add")

	if got := testutil.ToFloat64(m.PlaylistSongChanges.WithLabelValues("add")); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordAuth("signup", OutcomeConflict)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := m.RegisterDBStats(db, "cadence"); err != nil {
		t.Fatalf("register db stats: %v", err)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`cadence_auth_attempts_total{operation="signup",outcome="conflict"} 1`,
		"go_goroutines",
		`go_sql_open_connections{db_name="cadence"}`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
