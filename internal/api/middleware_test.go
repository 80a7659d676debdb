package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func idempotentHandler(c cache.Cache, status int, calls *atomic.Int32) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		writeJSON(w, status, map[string]int32{"call": n})
	})
	return Idempotency(c, time.Minute, time.Hour, zap.NewNop())(next)
}

func postWithKey(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := idempotentHandler(cache.NewMemoryCache(), http.StatusCreated, &calls)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, postWithKey("k-1"))
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(IdempotencyHitHeader))

	second := httptest.NewRecorder()
	h.ServeHTTP(second, postWithKey("k-1"))

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotencyHitHeader))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyDifferentKeysRunTwice(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := idempotentHandler(cache.NewMemoryCache(), http.StatusCreated, &calls)

	h.ServeHTTP(httptest.NewRecorder(), postWithKey("k-1"))
	h.ServeHTTP(httptest.NewRecorder(), postWithKey("k-2"))
	h.ServeHTTP(httptest.NewRecorder(), postWithKey(""))
	h.ServeHTTP(httptest.NewRecorder(), postWithKey(""))

	assert.Equal(t, int32(4), calls.Load())
}

func TestIdempotencyInProgress(t *testing.T) {
	t.Parallel()

	c := cache.NewMemoryCache()
	key := cache.IdempotencyKey(http.MethodPost, "/api/bookings", "k-1")
	ok, err := c.SetNX(context.Background(), key, []byte(idempotencyProcessing), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	var calls atomic.Int32
	rec := httptest.NewRecorder()
	idempotentHandler(c, http.StatusCreated, &calls).ServeHTTP(rec, postWithKey("k-1"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int32(0), calls.Load())
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	t.Parallel()

	c := cache.NewMemoryCache()
	var calls atomic.Int32
	h := idempotentHandler(c, http.StatusInternalServerError, &calls)

	h.ServeHTTP(httptest.NewRecorder(), postWithKey("k-1"))
	h.ServeHTTP(httptest.NewRecorder(), postWithKey("k-1"))

	assert.Equal(t, int32(2), calls.Load())
	_, ok, err := c.Get(context.Background(), cache.IdempotencyKey(http.MethodPost, "/api/bookings", "k-1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyReleasesKeyOnPanic(t *testing.T) {
	t.Parallel()

	c := cache.NewMemoryCache()
	var calls atomic.Int32
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			panic("handler failed")
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	})
	h := chimw.Recoverer(Idempotency(c, time.Minute, time.Hour, zap.NewNop())(panicking))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, postWithKey("k-1"))
	assert.Equal(t, http.StatusInternalServerError, first.Code)

	_, ok, err := c.Get(context.Background(), cache.IdempotencyKey(http.MethodPost, "/api/bookings", "k-1"))
	require.NoError(t, err)
	assert.False(t, ok)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, postWithKey("k-1"))
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotencyIgnoresGet(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := idempotentHandler(cache.NewMemoryCache(), http.StatusOK, &calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k-1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, int32(2), calls.Load())
}
