package middleware

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
)

// isStream reports Server-Sent Event routes, which must not be buffered
func isStream(r *http.Request) bool {
	return strings.Contains(r.URL.Path, "/stream/")
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, 5)
		return gz
	},
}

// alreadyCompressed lists content types that gain nothing from gzip
var alreadyCompressed = []string{
	"image/png",
	"image/jpeg",
	"application/pdf",
	"application/zip",
	"application/vnd.openxmlformats",
}

func compressible(contentType string) bool {
	for _, prefix := range alreadyCompressed {
		if strings.HasPrefix(contentType, prefix) {
			return false
		}
	}
	return true
}

// Compression gzips responses for clients that accept it. The decision is
// made at the first write, once the handler has set Content-Type.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isStream(r) || r.Method == http.MethodHead || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Accept-Encoding")
		gzw := &gzipResponseWriter{ResponseWriter: w}
		defer gzw.finish()

		next.ServeHTTP(gzw, r)
	})
}

// gzipResponseWriter compresses the body when the response qualifies
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	decided     bool
	wroteHeader bool
}

func (w *gzipResponseWriter) decide(status int) {
	if w.decided {
		return
	}
	w.decided = true

	h := w.Header()
	if status == http.StatusNoContent || status == http.StatusNotModified ||
		h.Get("Content-Encoding") != "" || !compressible(h.Get("Content-Type")) {
		return
	}

	h.Set("Content-Encoding", "gzip")
	h.Del("Content-Length")
	gz := gzipWriterPool.Get().(*gzip.Writer)
	gz.Reset(w.ResponseWriter)
	w.gz = gz
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.decide(status)
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.gz != nil {
		return w.gz.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *gzipResponseWriter) finish() {
	if w.gz == nil {
		return
	}
	_ = w.gz.Close()
	gzipWriterPool.Put(w.gz)
	w.gz = nil
}

// ETag hashes successful GET bodies and answers 304 Not Modified when the
// client already holds the same version
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || isStream(r) {
			next.ServeHTTP(w, r)
			return
		}

		rec := &etagResponseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.statusCode != http.StatusOK {
			w.WriteHeader(rec.statusCode)
			_, _ = w.Write(rec.buffer.Bytes())
			return
		}

		hash := sha256.Sum256(rec.buffer.Bytes())
		etag := `"` + hex.EncodeToString(hash[:16]) + `"`
		w.Header().Set("ETag", etag)

		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.Header().Del("Content-Encoding")
			w.WriteHeader(http.StatusNotModified)
			return
		}
		_, _ = w.Write(rec.buffer.Bytes())
	})
}

// etagMatches applies the weak comparison of If-None-Match
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

type etagResponseRecorder struct {
	http.ResponseWriter
	buffer     bytes.Buffer
	statusCode int
}

func (r *etagResponseRecorder) Write(b []byte) (int, error) {
	return r.buffer.Write(b)
}

func (r *etagResponseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
}

type cacheRule struct {
	prefix string
	value  string
}

// publicCacheRules apply to GET requests; the first matching prefix wins
var publicCacheRules = []cacheRule{
	{"/api/specialties", "public, max-age=600, must-revalidate"},
	{"/api/lab-tests", "public, max-age=600, must-revalidate"},
	{"/api/doctors", "public, max-age=120, must-revalidate"},
	{"/api/medicines", "public, max-age=120, must-revalidate"},
}

// CacheControl sets Cache-Control by route. Writes and account data are
// never stored by shared caches.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := "private, no-cache, must-revalidate"
		if r.Method != http.MethodGet {
			value = "no-store"
		} else {
			for _, rule := range publicCacheRules {
				if strings.HasPrefix(r.URL.Path, rule.prefix) {
					value = rule.value
					break
				}
			}
		}
		w.Header().Set("Cache-Control", value)

		next.ServeHTTP(w, r)
	})
}

// ResponseOptimization combines compression, ETag, and cache control
func ResponseOptimization(next http.Handler) http.Handler {
	return CacheControl(ETag(Compression(next)))
}
