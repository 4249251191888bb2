package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	if ok, remaining := rl.Allow("client"); !ok || remaining != 1 {
		t.Errorf("First request: got %v, %d", ok, remaining)
	}
	if ok, _ := rl.Allow("client"); !ok {
		t.Error("Second request should be allowed")
	}
	if ok, _ := rl.Allow("client"); ok {
		t.Error("Third request should be rejected")
	}
	if ok, _ := rl.Allow("other"); !ok {
		t.Error("Buckets must be independent per client")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	h := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("First request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Second request: got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("Limit header: got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestClientKey_ForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := clientKey(req); got != "203.0.113.9" {
		t.Errorf("Expected the first forwarded hop, got %q", got)
	}
}
