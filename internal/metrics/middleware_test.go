package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/docs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/docs/{id}", "200"))
	for _, id := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs/"+id, http.NoBody))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, before+2, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/docs/{id}", "200")))

	before = testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/missing", "404"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/missing", "404")))
	assert.Positive(t, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestStatusWriter_FirstStatusWins(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusTeapot, w.status)
	assert.Same(t, http.ResponseWriter(rr), w.Unwrap())
}
