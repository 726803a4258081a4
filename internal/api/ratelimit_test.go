package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, "slow down")
	now := time.Now()

	if ok, remaining, _ := rl.allow("1.2.3.4", now); !ok || remaining != 1 {
		t.Errorf("first request: ok=%v remaining=%d", ok, remaining)
	}
	if ok, remaining, _ := rl.allow("1.2.3.4", now); !ok || remaining != 0 {
		t.Errorf("second request: ok=%v remaining=%d", ok, remaining)
	}
	if ok, _, _ := rl.allow("1.2.3.4", now); ok {
		t.Error("third request should be rejected")
	}

	// Other clients have their own window.
	if ok, _, _ := rl.allow("5.6.7.8", now); !ok {
		t.Error("separate client should be allowed")
	}

	// A fresh window resets the count.
	if ok, _, _ := rl.allow("1.2.3.4", now.Add(2*time.Minute)); !ok {
		t.Error("request in new window should be allowed")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, "Too many requests, please try again later")
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	server := httptest.NewServer(handler)
	defer server.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(server.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, resp.StatusCode)
		}
		if resp.Header.Get("RateLimit-Limit") != "2" {
			t.Errorf("missing RateLimit-Limit header")
		}
	}

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("limited request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("RateLimit-Remaining") != "0" {
		t.Errorf("expected RateLimit-Remaining 0, got %q", resp.Header.Get("RateLimit-Remaining"))
	}
	if resp.Header.Get("RateLimit-Reset") == "" {
		t.Error("missing RateLimit-Reset header")
	}
}
