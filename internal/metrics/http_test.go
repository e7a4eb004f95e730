package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/api/shops/{id}/shelves",
		normalizePath("/api/shops/3f1c9a52-7d7e-4a4b-9d4f-0e2a1b3c4d5e/shelves"))
	assert.Equal(t, "/api/tiers", normalizePath("/api/tiers"))
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    string
	}{
		{"mux pattern", "GET /api/shops/{id}", "/api/shops/whatever", "/api/shops/{id}"},
		{"pattern without method", "/health", "/health", "/health"},
		{"unmatched api path", "", "/api/shops/3f1c9a52-7d7e-4a4b-9d4f-0e2a1b3c4d5e/nope", "/api/shops/{id}/nope"},
		{"unmatched foreign path", "", "/wp-login.php", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			req.Pattern = tt.pattern
			assert.Equal(t, tt.want, routeLabel(req))
		})
	}
}

func TestMiddleware_RecordsMuxPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/shops/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Middleware(mux)

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/shops/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/shops/3f1c9a52-7d7e-4a4b-9d4f-0e2a1b3c4d5e", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := HTTPRequestsTotal.WithLabelValues("GET", "other", "200")
	before := testutil.ToFloat64(counter)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestInventoryRecorders(t *testing.T) {
	denied := QuotaDecisionsTotal.WithLabelValues("shelves", "denied")
	before := testutil.ToFloat64(denied)
	QuotaDenied("shelves")
	assert.Equal(t, before+1, testutil.ToFloat64(denied))

	orphans := ReconcileRepairsTotal.WithLabelValues("orphan_linked")
	dangling := ReconcileRepairsTotal.WithLabelValues("dangling_dropped")
	o, d := testutil.ToFloat64(orphans), testutil.ToFloat64(dangling)
	Repaired(2, 0)
	assert.Equal(t, o+2, testutil.ToFloat64(orphans))
	assert.Equal(t, d, testutil.ToFloat64(dangling))
}
