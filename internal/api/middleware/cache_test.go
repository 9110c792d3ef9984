package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/healthmarket/internal/adapters/cache"
	redisclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/redis"
)

func newCachedHandler(t *testing.T, calls *int32) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	m := NewCacheMiddleware(cache.NewRedisAdapter(redisclient.NewClientFromRedis(rdb), "test:"), nil)
	return m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path == "/api/doctors/404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"doctors":[],"count":0}`))
	})), mr
}

func TestCacheMiddleware_CachesCatalogReads(t *testing.T) {
	var calls int32
	handler, mr := newCachedHandler(t, &calls)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/doctors?specialty=ENT", nil))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/doctors?specialty=ENT", nil))
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"doctors":[],"count":0}`, w.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// a different query is a different entry
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/doctors?specialty=Cardiology", nil))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	mr.FastForward(2 * time.Minute)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/doctors?specialty=ENT", nil))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
}

func TestCacheMiddleware_SkipsOtherRequests(t *testing.T) {
	var calls int32
	handler, _ := newCachedHandler(t, &calls)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/doctors", nil),
		httptest.NewRequest(http.MethodGet, "/api/orders", nil),
		httptest.NewRequest(http.MethodGet, "/api/doctorsx", nil),
	} {
		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Empty(t, w.Header().Get("X-Cache"), req.URL.Path)
		}
	}

	// errors are not cached
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/doctors/404", nil))
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	}
	assert.Equal(t, int32(8), atomic.LoadInt32(&calls))
}

func TestCacheMiddleware_QueryOrderSharesEntry(t *testing.T) {
	var calls int32
	handler, _ := newCachedHandler(t, &calls)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/medicines?q=para&limit=5", nil))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/medicines?limit=5&q=para", nil))
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCacheRoute_Matches(t *testing.T) {
	exact := CacheRoute{Path: "/api/specialties"}
	prefix := CacheRoute{Path: "/api/lab-tests/"}

	assert.True(t, exact.matches("/api/specialties"))
	assert.False(t, exact.matches("/api/specialties/1"))
	assert.True(t, prefix.matches("/api/lab-tests/7"))
	assert.False(t, prefix.matches("/api/lab-tests/"))
	assert.False(t, prefix.matches("/api/lab-tests"))
}
