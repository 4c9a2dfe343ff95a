package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/observability"
)

func TestLoggerEmitsOneLinePerRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	r.Use(HTMX)
	r.Use(Logger(zap.New(core)))
	r.Get("/vendors/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.NotSame(t, observability.NoopLogger(), observability.FromContext(r.Context()))
		_, _ = w.Write([]byte("hello"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodGet, "/vendors/abc", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(t, "/vendors/{id}", fields["route"])
	require.Equal(t, int64(200), fields["status"])
	require.Equal(t, int64(5), fields["bytes"])
	require.Equal(t, true, fields["htmx"])
	require.NotEmpty(t, fields["request_id"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(rec, req, http.StatusInternalServerError, "render failed")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "render failed\n", rec.Body.String())

	rec = httptest.NewRecorder()
	ctx := WithRequestID(WithHTMX(req.Context(), true), "rid-1")
	WriteError(rec, req.WithContext(ctx), http.StatusNotFound, "missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string]string{"error": "missing", "request_id": "rid-1"}, body)
}

func TestHTMXVariesEveryResponse(t *testing.T) {
	var sawHTMX []bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHTMX = append(sawHTMX, IsHTMX(r.Context()))
	}))

	plain := httptest.NewRecorder()
	h.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/vendors", nil))
	require.Equal(t, []string{"HX-Request"}, plain.Header().Values("Vary"))

	req := httptest.NewRequest(http.MethodGet, "/vendors", nil)
	req.Header.Set("HX-Request", "true")
	frag := httptest.NewRecorder()
	h.ServeHTTP(frag, req)
	require.Equal(t, []string{"HX-Request"}, frag.Header().Values("Vary"))

	require.Equal(t, []bool{false, true}, sawHTMX)
}

func TestAssetsWithCache(t *testing.T) {
	fsys := fstest.MapFS{
		"app.css":   {Data: []byte("body{}")},
		"js/map.js": {Data: []byte("console.log(1)")},
	}
	h := AssetsWithCache(fsys, "/assets/")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/js/map.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "console.log(1)", rec.Body.String())
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age=604800")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/js/map.js", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/nope.css", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
