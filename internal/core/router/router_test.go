package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openglam/tilegate/internal/core/config"
	"github.com/openglam/tilegate/internal/core/middleware"
	"github.com/openglam/tilegate/internal/resolve"
	"github.com/openglam/tilegate/internal/store"
)

type mapStore map[string][]byte

func (m mapStore) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func newHandler(t *testing.T, cfg config.Config, tiles store.TileStore) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(log, cfg, resolve.Default(), tiles)
	// the CORS middleware is part of the contract under test
	return middleware.CORS()(h)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServe_Tile(t *testing.T) {
	tiles := mapStore{
		"img1/0,0,256,256-256,-0-default.jpg": []byte("tile-bytes"),
	}
	h := newHandler(t, config.Config{Mode: config.ModeResolve}, tiles)

	rec := get(t, h, "/img1/0,0,256,256/256,/0/default.jpg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "tile-bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("content type = %q", ct)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header on success")
	}
}

func TestServe_InfoJSON(t *testing.T) {
	tiles := mapStore{"img1/info.json": []byte(`{"width":4096}`)}
	h := newHandler(t, config.Config{Mode: config.ModeResolve}, tiles)

	rec := get(t, h, "/img1/info.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestServe_MalformedIs404WithCORS(t *testing.T) {
	h := newHandler(t, config.Config{Mode: config.ModeResolve}, mapStore{})

	for _, path := range []string{
		"/img1/foo/full/0/default.jpg",
		"/img1/full/full/0/dEfaUlt.jpg",
		"/img1/full/full/0/default.jpg/extra",
	} {
		rec := get(t, h, path)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", path, rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("GET %s missing CORS header on 404", path)
		}
	}
}

func TestServe_UnresolvableIs404(t *testing.T) {
	h := newHandler(t, config.Config{Mode: config.ModeResolve}, mapStore{})

	// well-formed and canonical, but no pre-generated artifact shape
	for _, path := range []string{
		"/img1/full/full/0/default.jpg",
		"/img1/0,0,256,256/256,/0/color.jpg",
		"/img1/0,0,256,256/256,/0/default.png",
	} {
		if rec := get(t, h, path); rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestServe_MissingTileIs404(t *testing.T) {
	h := newHandler(t, config.Config{Mode: config.ModeResolve}, mapStore{})
	if rec := get(t, h, "/img1/0,0,256,256/256,/0/default.jpg"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestServe_NonCanonicalRedirects(t *testing.T) {
	h := newHandler(t, config.Config{Mode: config.ModeResolve}, mapStore{})

	cases := []struct {
		path     string
		status   int
		location string
	}{
		{"/img1", http.StatusSeeOther, "/img1/info.json"},
		{"/img1/", http.StatusSeeOther, "/img1/info.json"},
		{"/img1/0,0,256,256/256,256/0/default.jpg", http.StatusPermanentRedirect, "/img1/0,0,256,256/256,/0/default.jpg"},
		{"/img1/full/full/360/default.jpg", http.StatusPermanentRedirect, "/img1/full/full/0/default.jpg"},
	}
	for _, c := range cases {
		rec := get(t, h, c.path)
		if rec.Code != c.status {
			t.Fatalf("GET %s status = %d, want %d", c.path, rec.Code, c.status)
		}
		if loc := rec.Header().Get("Location"); loc != c.location {
			t.Fatalf("GET %s location = %q, want %q", c.path, loc, c.location)
		}
	}
}

func TestServe_SendfileMode(t *testing.T) {
	cfg := config.Config{Mode: config.ModeSendfile, SendfileHeader: "X-Accel-Redirect"}
	h := newHandler(t, cfg, mapStore{})

	rec := get(t, h, "/img1/0,0,256,256/256,/0/default.jpg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := "/img1/0,0,256,256-256,-0-default.jpg"
	if got := rec.Header().Get("X-Accel-Redirect"); got != want {
		t.Fatalf("sendfile header = %q, want %q", got, want)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("sendfile response has a body: %q", rec.Body.String())
	}
}
