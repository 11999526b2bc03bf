package ratelim

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk/utils"
)

func TestLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Limit(func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	call := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/inquiries", nil)
		r.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h(rec, r, nil)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("1.1.1.1"))
	assert.Equal(t, http.StatusOK, call("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("1.1.1.1"))
	assert.Equal(t, http.StatusOK, call("2.2.2.2"), "other clients have their own bucket")
}

func TestRefillAndEviction(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))

	now = now.Add(11 * time.Minute)
	rl.Allow("b")
	rl.mu.Lock()
	_, kept := rl.visitors["a"]
	rl.mu.Unlock()
	assert.False(t, kept)
}

func TestRotatingForwardedForSharesPeerBucket(t *testing.T) {
	rl := NewRateLimiter(10, 5)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }
	h := rl.Limit(func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	allowed := 0
	for i := 0; i < 100; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		r.RemoteAddr = "203.0.113.9:4000"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h(rec, r, nil)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}

func TestTrustedProxyForwardsClient(t *testing.T) {
	proxies, err := utils.ParseProxies([]string{"10.0.0.1"})
	require.NoError(t, err)
	rl := NewRateLimiter(1, 1).TrustProxies(proxies)
	h := rl.Limit(func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	call := func(client string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/inquiries", nil)
		r.RemoteAddr = "10.0.0.1:4000"
		r.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h(rec, r, nil)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("198.51.100.1"))
	assert.Equal(t, http.StatusOK, call("198.51.100.2"))
}
