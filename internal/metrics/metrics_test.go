package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByPattern(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tenders/{tenderId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tenders/a", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tenders/b", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /api/tenders/{tenderId}", http.MethodGet, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", http.MethodGet, "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requests))
}

func TestHandler_ExposesDomainCounters(t *testing.T) {
	m := New()
	m.DeadlinesImported.Add(3)
	m.TendersClosed.WithLabelValues("won").Inc()

	expected := `
# HELP licitagora_deadlines_imported_total Deadlines created from tender closing dates.
# TYPE licitagora_deadlines_imported_total counter
licitagora_deadlines_imported_total 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "licitagora_deadlines_imported_total"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `licitagora_tenders_closed_total{outcome="won"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
