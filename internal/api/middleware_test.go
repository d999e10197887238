package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hoanghai1803/newsdash/internal/metrics"
)

func TestCORS(t *testing.T) {
	t.Run("sets headers", func(t *testing.T) {
		handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		tests := []struct {
			header string
			want   string
		}{
			{"Access-Control-Allow-Origin", "*"},
			{"Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS"},
			{"Access-Control-Allow-Headers", "Content-Type"},
		}
		for _, tt := range tests {
			if got := w.Header().Get(tt.header); got != tt.want {
				t.Errorf("header %q = %q, want %q", tt.header, got, tt.want)
			}
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		innerCalled := false
		handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			innerCalled = true
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/criteria", nil))

		if w.Code != http.StatusNoContent {
			t.Errorf("got status %d, want %d", w.Code, http.StatusNoContent)
		}
		if innerCalled {
			t.Error("inner handler should not be called for OPTIONS preflight")
		}
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("render exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/network.png", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/network.png", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestStatusRecorderCountsBytes(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	_, _ = rec.Write([]byte("hello"))
	_, _ = rec.Write([]byte(", 세계"))

	if rec.bytes != len("hello, 세계") {
		t.Errorf("bytes = %d, want %d", rec.bytes, len("hello, 세계"))
	}
	if rec.status != http.StatusOK {
		t.Errorf("status = %d, want default %d", rec.status, http.StatusOK)
	}
	if newStatusRecorder(rec) != rec {
		t.Error("wrapping a recorder twice should reuse it")
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Post("/api/favorites/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/favorites/{id}/toggle", "202")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/favorites/"+id+"/toggle", nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("counter delta = %v, want 3", got)
	}
}
