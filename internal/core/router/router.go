// Package router implements the IIIF request handler: parse the path,
// canonicalise, then redirect or resolve-and-serve.
package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openglam/tilegate/internal/core/config"
	"github.com/openglam/tilegate/internal/core/observability"
	"github.com/openglam/tilegate/internal/iiif"
	"github.com/openglam/tilegate/internal/resolve"
	"github.com/openglam/tilegate/internal/store"
)

const route = "/{iiif}"

// Handler serves every IIIF path under the server root.
type Handler struct {
	log      *slog.Logger
	mode     string
	sendfile string
	resolver *resolve.Resolver
	tiles    store.TileStore
}

func New(log *slog.Logger, cfg config.Config, resolver *resolve.Resolver, tiles store.TileStore) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		mode:     cfg.Mode,
		sendfile: cfg.SendfileHeader,
		resolver: resolver,
		tiles:    tiles,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

	h.serve(r.Context(), sw, r)
	observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
}

func (h *Handler) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	req, ok := iiif.ParsePath(r.URL.Path)
	if !ok {
		observability.IncParseRejected()
		notFound(w)
		return
	}
	observability.IncParseOK()

	canonical := iiif.Canonical(req)
	if canonical != req {
		h.redirect(w, r, req, canonical)
		return
	}

	key, ok := h.resolver.Resolve(canonical)
	if !ok {
		h.log.LogAttrs(ctx, slog.LevelDebug, "no storage key for request",
			slog.String("path", r.URL.Path))
		notFound(w)
		return
	}

	if h.mode == config.ModeSendfile {
		// Transmission is the fronting server's job; hand it the key.
		w.Header().Set(h.sendfile, "/"+key)
		w.WriteHeader(http.StatusOK)
		return
	}

	b, err := h.tiles.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		h.log.Error("tile store read failed", "key", key, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType(canonical))
	_, _ = w.Write(b)
}

// redirect points the client at the canonical spelling. A bare or
// trailing-slash identifier gets a see-other to its info.json, like the
// IIIF base URI redirect; everything else is a permanent redirect.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, from, to iiif.Request) {
	status := http.StatusPermanentRedirect
	kind := "image"
	if _, ok := from.(iiif.InfoRequest); ok {
		status = http.StatusSeeOther
		kind = "info"
	}
	observability.IncCanonicalRewrite(kind)

	location := iiif.FormatPath(to)
	if q := r.URL.RawQuery; q != "" {
		location += "?" + q
	}
	http.Redirect(w, r, location, status)
}

func notFound(w http.ResponseWriter) {
	http.Error(w, "404 not found", http.StatusNotFound)
}

func contentType(req iiif.Request) string {
	img, ok := req.(iiif.ImageRequest)
	if !ok {
		return "application/json"
	}
	switch strings.ToLower(img.Format) {
	case "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "tif":
		return "image/tiff"
	case "jp2":
		return "image/jp2"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

