package fanwheel

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAssetKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"REI", "rei"},
		{"Trader Joe's", "traderjoes"},
		{"St. Louis Bread Co.", "stlouisbreadco"},
		{"Dick’s Sporting Goods", "dickssportinggoods"},
		{"Bath, Body", "bathbody"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAssetKey(tt.in), "key %q", tt.in)
	}
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := uniformImage(16, 16, c)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveSynthesisFallback(t *testing.T) {
	down := failingServer(t)
	r := NewResolver(ResolverOptions{
		CacheDir:          t.TempDir(),
		BrandfetchAPIKey:  "test-key",
		BrandfetchBaseURL: down.URL,
		ClearbitBaseURL:   down.URL,
	})

	path, err := r.Resolve(context.Background(), "zzqx no such brand")
	require.NoError(t, err)
	require.NotEmpty(t, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestSynthesizeNonASCIILetter(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(ResolverOptions{CacheDir: dir})

	path := r.CachePath("Éclair Café")
	require.NoError(t, r.synthesize("Éclair Café", path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestResolveCacheHitSkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	logo := pngBytes(t, color.RGBA{30, 30, 30, 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(logo)
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(ResolverOptions{
		CacheDir:        t.TempDir(),
		ClearbitBaseURL: srv.URL,
	})

	ctx := context.Background()
	first, err := r.Resolve(ctx, "REI")
	require.NoError(t, err)
	warm := calls.Load()
	require.Greater(t, warm, int64(0))

	second, err := r.Resolve(ctx, "REI")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, warm, calls.Load(), "warm cache must not touch the network")
}

func TestResolveBrandAPIFlow(t *testing.T) {
	logo := pngBytes(t, color.RGBA{40, 40, 40, 255})

	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	t.Cleanup(srv.Close)

	var sawAuth string
	mux.HandleFunc("/brands/", func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		fmt.Fprintf(w, `{"logos":[{"formats":[{"src":"%s/logo.png"}]}]}`, srv.URL)
	})
	mux.HandleFunc("/logo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(logo)
	})

	r := NewResolver(ResolverOptions{
		CacheDir:          t.TempDir(),
		BrandfetchAPIKey:  "secret-token",
		BrandfetchBaseURL: srv.URL,
		ClearbitBaseURL:   failingServer(t).URL,
	})

	path, err := r.Resolve(context.Background(), "REI")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", sawAuth)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, logo, data)
}

func TestResolveFallsThroughToSecondary(t *testing.T) {
	logo := pngBytes(t, color.RGBA{50, 50, 50, 255})
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(logo)
	}))
	t.Cleanup(secondary.Close)

	r := NewResolver(ResolverOptions{
		CacheDir:          t.TempDir(),
		BrandfetchAPIKey:  "test-key",
		BrandfetchBaseURL: failingServer(t).URL,
		ClearbitBaseURL:   secondary.URL,
	})

	path, err := r.Resolve(context.Background(), "REI")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, logo, data)
}

func TestResolveRejectsNonImagePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a logo</html>"))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	r := NewResolver(ResolverOptions{CacheDir: dir, ClearbitBaseURL: srv.URL})

	path, err := r.Resolve(context.Background(), "REI")
	require.NoError(t, err)

	// non-image payloads are rejected, so the synthesized placeholder wins
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, _, err = image.Decode(f)
	assert.NoError(t, err)
}

func TestCachePathDeterministic(t *testing.T) {
	r := NewResolver(ResolverOptions{CacheDir: "logos"})
	assert.Equal(t, r.CachePath("Trader Joe's"), r.CachePath("trader joes"))
}
