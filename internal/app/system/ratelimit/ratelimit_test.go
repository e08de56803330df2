package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aggienexus/nexus/internal/app/system/auth"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestNew_DisabledBudget(t *testing.T) {
	l := New(0)
	if l != nil {
		t.Fatal("expected nil limiter for zero budget")
	}
	if !l.Allow("anyone") {
		t.Error("nil limiter must allow everything")
	}
	rec := httptest.NewRecorder()
	l.Middleware(ok).ServeHTTP(rec, httptest.NewRequest("POST", "/api/events", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMiddleware_Returns429WhenExhausted(t *testing.T) {
	l := New(10) // burst of 1
	h := l.Middleware(ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/events", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK {
		t.Errorf("first request: expected 200, got %d", codes[0])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %v", codes)
	}
}

func TestMiddleware_GetNotLimited(t *testing.T) {
	l := New(10)
	h := l.Middleware(ok)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/events", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestMiddleware_ClientsAreIndependent(t *testing.T) {
	l := New(10)
	h := l.Middleware(ok)

	for _, ip := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest("POST", "/api/projects", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("client %s: expected 200, got %d", ip, rec.Code)
		}
	}
}

func TestKey(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	if got := Key(req); got != "ip:192.168.1.5" {
		t.Errorf("Key() = %q", got)
	}

	req = auth.WithTestUser(req, &auth.SessionUser{ID: "507f1f77bcf86cd799439011"})
	if got := Key(req); got != "user:507f1f77bcf86cd799439011" {
		t.Errorf("Key() = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 4.4.4.4 "}, "9.9.9.9:1", "4.4.4.4"},
		{"remote with port", nil, "9.9.9.9:1", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLimiter_ForgetsIdleClients(t *testing.T) {
	l := New(60)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	l.Allow("a")
	clock = clock.Add(10 * time.Minute)
	l.Allow("b")

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, found := l.clients["a"]; found {
		t.Error("idle client should have been evicted")
	}
	if _, found := l.clients["b"]; !found {
		t.Error("active client missing")
	}
}
