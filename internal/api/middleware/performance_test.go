package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})
}

func TestCompression_GzipsJSON(t *testing.T) {
	handler := Compression(jsonHandler(`{"doctors":[]}`))

	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rr.Header().Get("Vary"))

	gz, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, `{"doctors":[]}`, string(body))
}

func TestCompression_SkipsBinaryAndStreams(t *testing.T) {
	png := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	req := httptest.NewRequest(http.MethodGet, "/qr.png", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	png.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rr.Body.Bytes())

	stream := Compression(jsonHandler("data: x\n\n"))
	req = httptest.NewRequest(http.MethodGet, "/api/stream/orders/order/1", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr = httptest.NewRecorder()
	stream.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Equal(t, "data: x\n\n", rr.Body.String())
}

func TestETag_NotModified(t *testing.T) {
	handler := ETag(jsonHandler(`{"medicines":[]}`))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/medicines", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/medicines", nil)
	req.Header.Set("If-None-Match", `"other", W/`+etag)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestETag_SkipsErrors(t *testing.T) {
	handler := ETag(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"doctor not found"}`)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/doctors/9", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, rr.Header().Get("ETag"))
	assert.Equal(t, `{"error":"doctor not found"}`, rr.Body.String())
}

func TestCacheControl(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/specialties", "public, max-age=600, must-revalidate"},
		{http.MethodGet, "/api/lab-tests/3", "public, max-age=600, must-revalidate"},
		{http.MethodGet, "/api/doctors", "public, max-age=120, must-revalidate"},
		{http.MethodGet, "/api/me", "private, no-cache, must-revalidate"},
		{http.MethodPost, "/api/orders", "no-store"},
	}
	handler := CacheControl(jsonHandler("{}"))
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rr.Header().Get("Cache-Control"))
		})
	}
}
