package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemoryCounterStore() *memoryCounterStore {
	return &memoryCounterStore{counts: map[string]int64{}}
}

func (m *memoryCounterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func TestAuthRateLimitBlocksAfterIPLimit(t *testing.T) {
	store := newMemoryCounterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
		req.RemoteAddr = "10.0.0.1:5000"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("first attempt blocked: %d", code)
	}
	if code := do(); code != http.StatusOK {
		t.Fatalf("second attempt blocked: %d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("third attempt should be limited, got %d", code)
	}
}

func TestAuthRateLimitCountsPerEmail(t *testing.T) {
	store := newMemoryCounterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(email, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`"}`))
		req.RemoteAddr = addr
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := do("a@example.com", "10.0.0.1:5000"); code != http.StatusOK {
		t.Fatalf("first attempt blocked: %d", code)
	}
	// same email from a different address still counts
	if code := do("A@Example.com ", "10.0.0.2:5000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected email limit, got %d", code)
	}
	// other emails are unaffected
	if code := do("b@example.com", "10.0.0.1:5000"); code != http.StatusOK {
		t.Fatalf("unrelated email blocked: %d", code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)
	handler := AuthRateLimit(policy, newMemoryCounterStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("disabled policy should pass through, got %d", resp.Code)
	}
}
