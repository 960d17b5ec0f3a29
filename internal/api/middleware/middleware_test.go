package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"showcase/internal/common/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := security.PrincipalFromContext(r.Context())
		if !assert.True(t, ok) {
			return
		}
		w.Write([]byte(string(p.Kind())))
	})
}

func TestRequirePrincipal(t *testing.T) {
	tokens := security.NewTokenService([]byte("secret"), time.Hour, time.Hour)
	creatorToken, err := tokens.IssueCreator("c1")
	require.NoError(t, err)
	adminToken, err := tokens.IssueAdmin("a1", "root@example.com", security.RoleAdmin)
	require.NoError(t, err)

	h := RequirePrincipal(security.NewResolver(tokens, security.KindCreator))(principalEcho(t))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+creatorToken) }, http.StatusOK},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: security.CreatorCookieName, Value: creatorToken})
		}, http.StatusOK},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") }, http.StatusUnauthorized},
		{"admin token on creator route", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+adminToken) }, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/creator/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "creator", rec.Body.String())
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRequirePrincipal_AdminRoles(t *testing.T) {
	tokens := security.NewTokenService([]byte("secret"), time.Hour, time.Hour)
	admin, err := tokens.IssueAdmin("a1", "root@example.com", security.RoleAdmin)
	require.NoError(t, err)
	super, err := tokens.IssueAdmin("a2", "boss@example.com", security.RoleSuperAdmin)
	require.NoError(t, err)

	res := security.NewResolver(tokens, security.KindAdmin).WithRoles(security.RoleSuperAdmin)
	h := RequirePrincipal(res)(principalEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: security.AdminCookieName, Value: admin})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: security.AdminCookieName, Value: super})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("203.0.113.7:1000").Code)
	assert.Equal(t, http.StatusNoContent, call("203.0.113.7:1001").Code)

	limited := call("203.0.113.7:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, call("198.51.100.1:1000").Code, "other clients have their own bucket")
}

func TestRateLimiter_SweepEvictsIdleClients(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	countKeys := func() int {
		n := 0
		rl.limiters.Range(func(_, _ any) bool { n++; return true })
		return n
	}

	for i := 0; i < 50; i++ {
		rl.Allow("10.0.0." + strconv.Itoa(i))
	}
	require.Equal(t, 50, countKeys())
	assert.False(t, rl.Allow("10.0.0.1"), "bucket is drained")

	now = now.Add(defaultLimiterIdleTTL / 2)
	rl.Allow("10.0.0.1")
	assert.Equal(t, 0, rl.Sweep(), "nothing is idle yet")

	now = now.Add(defaultLimiterIdleTTL/2 + time.Second)
	assert.Equal(t, 49, rl.Sweep())
	assert.Equal(t, 1, countKeys(), "recently used client is kept")

	assert.True(t, rl.Allow("10.0.0.2"), "evicted client starts with a fresh bucket")
}

func TestRateLimiter_RunStopsOnCancel(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
