package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
)

// CacheRoute is a cached GET path. Prefix routes end in "/" and cover every
// path below them.
type CacheRoute struct {
	Path string
	TTL  time.Duration
}

func (c CacheRoute) matches(path string) bool {
	if strings.HasSuffix(c.Path, "/") {
		return strings.HasPrefix(path, c.Path) && len(path) > len(c.Path)
	}
	return path == c.Path
}

// DefaultCacheRoutes are the public catalog reads worth caching. Admin
// edits become visible once the entry expires.
func DefaultCacheRoutes() []CacheRoute {
	return []CacheRoute{
		{Path: "/api/doctors", TTL: time.Minute},
		{Path: "/api/doctors/", TTL: 2 * time.Minute},
		{Path: "/api/specialties", TTL: 10 * time.Minute},
		{Path: "/api/medicines", TTL: 2 * time.Minute},
		{Path: "/api/medicines/", TTL: 2 * time.Minute},
		{Path: "/api/lab-tests", TTL: 10 * time.Minute},
		{Path: "/api/lab-tests/", TTL: 10 * time.Minute},
	}
}

// CacheMiddleware caches public catalog responses
type CacheMiddleware struct {
	cache   providers.CacheProvider
	metrics *observability.Metrics
	routes  []CacheRoute
}

// NewCacheMiddleware creates a cache middleware over routes, or the default
// catalog routes when none are given
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics, routes ...CacheRoute) *CacheMiddleware {
	if len(routes) == 0 {
		routes = DefaultCacheRoutes()
	}
	return &CacheMiddleware{
		cache:   cache,
		metrics: metrics,
		routes:  routes,
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}
		route, ok := m.route(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := cacheKey(r)
		if cached, err := m.cache.Get(ctx, key); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, "http")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, "http")
		w.Header().Set("X-Cache", "MISS")

		tee := &teeResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(tee, r)

		if tee.statusCode != http.StatusOK || tee.body.Len() == 0 {
			return
		}
		if err := m.cache.Set(ctx, key, tee.body.Bytes(), route.TTL); err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to cache response")
		}
	})
}

func (m *CacheMiddleware) route(path string) (CacheRoute, bool) {
	for _, route := range m.routes {
		if route.matches(path) {
			return route, true
		}
	}
	return CacheRoute{}, false
}

// cacheKey hashes the path and the query with its parameters sorted, so
// ?a=1&b=2 and ?b=2&a=1 share an entry
func cacheKey(r *http.Request) string {
	key := r.URL.Path
	if query := r.URL.Query(); len(query) > 0 {
		key += "?" + query.Encode()
	}
	hash := sha256.Sum256([]byte(key))
	return "http:" + hex.EncodeToString(hash[:])
}

// teeResponseWriter passes the response through and keeps a copy of the body
type teeResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	body        bytes.Buffer
	wroteHeader bool
}

func (t *teeResponseWriter) WriteHeader(statusCode int) {
	if t.wroteHeader {
		return
	}
	t.wroteHeader = true
	t.statusCode = statusCode
	t.ResponseWriter.WriteHeader(statusCode)
}

func (t *teeResponseWriter) Write(data []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	t.body.Write(data)
	return t.ResponseWriter.Write(data)
}
