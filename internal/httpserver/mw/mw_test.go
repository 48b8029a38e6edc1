package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tutor/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, r *http.Request) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec.Code
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"docs.example.com", "*.tutor.dev"}, logger.NewNop())(okHandler)

	tests := []struct {
		host string
		want int
	}{
		{"docs.example.com", http.StatusOK},
		{"DOCS.example.com:8080", http.StatusOK},
		{"a.tutor.dev", http.StatusOK},
		{"tutor.dev", http.StatusForbidden},
		{"eviltutor.dev", http.StatusForbidden},
		{"other.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Host = tt.host
			assert.Equal(t, tt.want, serve(h, r))
		})
	}
}

func TestEnforceHost_EmptyIsPassthrough(t *testing.T) {
	h := EnforceHost(nil, logger.NewNop())(okHandler)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "anything"
	assert.Equal(t, http.StatusOK, serve(h, r))
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, true, logger.NewNop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.RemoteAddr = "10.1.1.1:1234"
	assert.Equal(t, http.StatusOK, serve(h, r))

	r = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.RemoteAddr = "10.1.1.1:1234"
	r.Header.Set("X-Forwarded-For", "8.8.8.8")
	assert.Equal(t, http.StatusForbidden, serve(h, r))

	open := AllowOnlyCIDRS(nil, false, logger.NewNop())(okHandler)
	assert.Equal(t, http.StatusOK, serve(open, httptest.NewRequest(http.MethodGet, "/healthz", nil)))
}

func TestRateLimit(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var rejected []string
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
		OnReject:          func(r *http.Request) { rejected = append(rejected, r.URL.Path) },
	})(okHandler)

	req := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusOK, req().Code)
	assert.Equal(t, http.StatusOK, req().Code)

	limited := req()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, []string{"/"}, rejected)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, req().Code)
}

func TestRateLimit_PerClient(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := RateLimit(RateLimitConfig{
		Burst:             1,
		RefillPerIPPerMin: 1,
		Now:               func() time.Time { return now },
	})(okHandler)

	from := func(addr string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, from("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, from("192.0.2.1:1001"))
	assert.Equal(t, http.StatusOK, from("192.0.2.2:1000"))
}

func TestRateLimit_RetryAfterFollowsRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := RateLimit(RateLimitConfig{
		Burst:             1,
		RefillPerIPPerMin: 2,
		Now:               func() time.Time { return now },
	})(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestLog_RecordsStatus(t *testing.T) {
	h := Log(logger.NewNop(), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	assert.Equal(t, http.StatusTeapot, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)))
}
