package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- visitorStore ---

func TestVisitorStore_ReturnsSameLimiterPerKey(t *testing.T) {
	store := newVisitorStore(1, 1)

	first := store.get("10.0.0.1")
	second := store.get("10.0.0.1")
	other := store.get("10.0.0.2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestVisitorStore_CleanupEvictsStaleEntries(t *testing.T) {
	now := time.Now()
	store := newVisitorStore(1, 1)
	store.nowFunc = func() time.Time { return now }

	store.get("10.0.0.1")
	store.get("10.0.0.2")

	// Move past the TTL and touch only one visitor.
	now = now.Add(visitorTTL + time.Second)
	store.get("10.0.0.2")
	store.cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.visitors, "10.0.0.1")
	assert.Contains(t, store.visitors, "10.0.0.2")
}

// --- RateLimit middleware ---

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	handler := RateLimit(1, 2, stop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, "request %d within burst", i+1)
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	handler := RateLimit(0.001, 1, stop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	var env struct {
		Errors []struct {
			ID string `json:"id"`
		} `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "rate_limited", env.Errors[0].ID)
}

func TestRateLimit_TracksClientsIndependently(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	handler := RateLimit(0.001, 1, stop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, first)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, first)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	// A different client still has a full bucket.
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, second)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- ClientIP ---

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "10.0.0.1:52314",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:52314",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "x-forwarded-for chain takes first hop",
			remoteAddr: "10.0.0.1:52314",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 198.51.100.2"},
			want:       "203.0.113.9",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:52314",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "10.0.0.1",
			want:       "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

// --- IPAllowlist ---

func TestIPAllowlist_AllowsMatchingCIDR(t *testing.T) {
	handler := IPAllowlist([]string{"10.0.0.0/8"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIPAllowlist_RejectsOutsideCIDR(t *testing.T) {
	handler := IPAllowlist([]string{"10.0.0.0/8"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "203.0.113.9:4444"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestIPAllowlist_EmptyDeniesAll(t *testing.T) {
	handler := IPAllowlist(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "10.0.0.1:4444"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
