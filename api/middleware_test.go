package api_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/gigmarket/api"
	"github.com/garnizeh/gigmarket/pkg/models"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := api.CORSMiddleware(next)

	// OPTIONS should return 204 and not call next
	reqOpt := httptest.NewRequest(http.MethodOptions, "/cors", nil)
	wOpt := httptest.NewRecorder()
	handler.ServeHTTP(wOpt, reqOpt)
	resOpt := wOpt.Result()
	defer resOpt.Body.Close()
	if resOpt.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", resOpt.StatusCode)
	}
	if got := resOpt.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header set, got %q", got)
	}

	// GET should pass through and set headers
	reqGet := httptest.NewRequest(http.MethodGet, "/cors", nil)
	wGet := httptest.NewRecorder()
	handler.ServeHTTP(wGet, reqGet)
	resGet := wGet.Result()
	defer resGet.Body.Close()
	if resGet.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", resGet.StatusCode)
	}
	if got := resGet.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "GET") {
		t.Fatalf("expected Allow-Methods to include GET, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	// handler that panics
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := api.RecoveryMiddleware(pan)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 from panic recovery, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Internal Server Error") {
		t.Fatalf("unexpected body for recovery: %s", string(b))
	}

	// normal handler should pass through
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler2 := api.RecoveryMiddleware(ok)
	w2 := httptest.NewRecorder()
	handler2.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w2.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for normal path, got %d", w2.Result().StatusCode)
	}
}

func TestIdentityMiddleware(t *testing.T) {
	secret := "s3cr3t"
	var seen models.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = api.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := api.IdentityMiddleware(secret)(next)

	sign := func(claims jwt.MapClaims, key string) string {
		tokStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		return tokStr
	}
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantActor  string
	}{
		{name: "MissingHeader", authHeader: "", wantStatus: http.StatusOK, wantActor: ""},
		{name: "EmptyBearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "NotBearer", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "BadToken", authHeader: "Bearer bad.token.here", wantStatus: http.StatusUnauthorized},
		{name: "WrongSecret", authHeader: "Bearer " + sign(jwt.MapClaims{"sub": "u1", "exp": exp}, "other"), wantStatus: http.StatusUnauthorized},
		{name: "Expired", authHeader: "Bearer " + sign(jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, secret), wantStatus: http.StatusUnauthorized},
		{name: "NoExpiry", authHeader: "Bearer " + sign(jwt.MapClaims{"sub": "u1"}, secret), wantStatus: http.StatusUnauthorized},
		{name: "NoSubject", authHeader: "Bearer " + sign(jwt.MapClaims{"email": "a@b", "exp": exp}, secret), wantStatus: http.StatusUnauthorized},
		{name: "Valid", authHeader: "Bearer " + sign(jwt.MapClaims{"sub": "u1", "exp": exp}, secret), wantStatus: http.StatusOK, wantActor: "u1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			seen = models.Actor{ID: "unset"}
			req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Result().StatusCode != c.wantStatus {
				t.Fatalf("%s: want %d got %d", c.name, c.wantStatus, w.Result().StatusCode)
			}
			if c.wantStatus == http.StatusOK && seen.ID != c.wantActor {
				t.Fatalf("%s: want actor %q got %q", c.name, c.wantActor, seen.ID)
			}
		})
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	if api.NewRateLimiter(0, 10) != nil {
		t.Fatalf("expected nil limiter for zero rate")
	}
	var disabled *api.RateLimiter
	w := httptest.NewRecorder()
	disabled.Middleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("disabled limiter: expected 200 got %d", w.Code)
	}

	handler := api.NewRateLimiter(0.001, 1).Middleware(next)
	post := func(actor string) int {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		if actor != "" {
			req = req.WithContext(api.WithActor(req.Context(), models.Actor{ID: actor}))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}
	if got := post("a"); got != http.StatusOK {
		t.Fatalf("first write: expected 200 got %d", got)
	}
	if got := post("a"); got != http.StatusTooManyRequests {
		t.Fatalf("second write: expected 429 got %d", got)
	}
	if got := post("b"); got != http.StatusOK {
		t.Fatalf("other actor: expected 200 got %d", got)
	}

	// reads are never limited
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		handler.ServeHTTP(w, req.WithContext(api.WithActor(req.Context(), models.Actor{ID: "a"})))
		if w.Code != http.StatusOK {
			t.Fatalf("read: expected 200 got %d", w.Code)
		}
	}
}

func TestRateLimiterCleanupEvictsIdleCallers(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	limiter := api.NewRateLimiter(1, 1)
	handler := limiter.Middleware(next)

	post := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 5; i++ {
		post(fmt.Sprintf("10.0.0.%d:4000", i))
	}
	if got := limiter.Len(); got != 5 {
		t.Fatalf("expected 5 tracked callers, got %d", got)
	}

	if removed := limiter.Cleanup(time.Hour); removed != 0 || limiter.Len() != 5 {
		t.Fatalf("recent callers must be kept, removed %d", removed)
	}

	time.Sleep(20 * time.Millisecond)
	post("10.0.0.0:4000")
	if removed := limiter.Cleanup(10 * time.Millisecond); removed != 4 {
		t.Fatalf("expected 4 idle callers evicted, got %d", removed)
	}
	if got := limiter.Len(); got != 1 {
		t.Fatalf("expected the active caller to remain, got %d", got)
	}
}

func TestRateLimiterStartCleanupStopsWithContext(t *testing.T) {
	limiter := api.NewRateLimiter(1, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter.StartCleanup(ctx, 5*time.Millisecond, time.Millisecond)

	deadline := time.Now().Add(3 * time.Second)
	for limiter.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("idle caller was not evicted by the background cleanup")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// a nil limiter has nothing to clean
	var disabled *api.RateLimiter
	disabled.StartCleanup(ctx, time.Millisecond, time.Millisecond)
	if disabled.Len() != 0 || disabled.Cleanup(0) != 0 {
		t.Fatalf("nil limiter must be inert")
	}
}
