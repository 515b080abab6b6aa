// Package resolve maps canonical IIIF requests onto the storage keys of
// pre-generated tile artifacts.
package resolve

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/openglam/tilegate/internal/iiif"
)

// Default key layout: a flat directory per identifier holding tiles
// named after the four image-request parameters, plus the info.json.
const (
	DefaultImageTemplate = "{identifier}/{region}-{size}-{rotation}-{quality}.{format}"
	DefaultInfoTemplate  = "{identifier}/info.json"
)

// Tile pipelines shard wide identifier spaces with a two-level hex
// prefix via the {identifier-shard} placeholder.
const shardSegments = 2

var (
	imagePlaceholders = placeholderSet(
		"identifier", "identifier-shard",
		"region", "region.x", "region.y", "region.w", "region.h",
		"size", "size.w", "size.h",
		"rotation", "quality", "format",
	)
	infoPlaceholders = placeholderSet("identifier", "identifier-shard")
)

func placeholderSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Resolver turns canonical requests into storage keys.
type Resolver struct {
	image *Template
	info  *Template
}

// New builds a resolver from the two path templates. Templates are
// checked up front: unknown placeholders and layouts that could render
// non-relative keys are configuration errors.
func New(imageTemplate, infoTemplate string) (*Resolver, error) {
	img, err := parseKeyTemplate(imageTemplate, imagePlaceholders)
	if err != nil {
		return nil, fmt.Errorf("image path template: %w", err)
	}
	info, err := parseKeyTemplate(infoTemplate, infoPlaceholders)
	if err != nil {
		return nil, fmt.Errorf("info path template: %w", err)
	}
	return &Resolver{image: img, info: info}, nil
}

// Default returns a resolver using the standard flat layout.
func Default() *Resolver {
	r, err := New(DefaultImageTemplate, DefaultInfoTemplate)
	if err != nil {
		panic(err)
	}
	return r
}

func parseKeyTemplate(s string, allowed map[string]struct{}) (*Template, error) {
	t, err := ParseTemplate(s)
	if err != nil {
		return nil, err
	}
	example := map[string]string{}
	for _, v := range t.Vars() {
		if _, ok := allowed[v]; !ok {
			return nil, fmt.Errorf("unexpected placeholder %q", v)
		}
		example[v] = "x"
	}
	rendered, err := t.Render(example)
	if err != nil {
		return nil, err
	}
	if err := validateRelativePath(rendered); err != nil {
		return nil, err
	}
	return t, nil
}

// Resolve maps a request to its storage key. Only a canonical
// InfoRequest, or a canonical ImageRequest that is fully absolute
// (absolute region and size, zero non-mirrored rotation, default
// quality, jpg format), has a pre-generated artifact; anything else
// reports false and the caller surfaces not-found.
func (r *Resolver) Resolve(req iiif.Request) (string, bool) {
	if iiif.Canonical(req) != req {
		return "", false
	}

	switch q := req.(type) {
	case iiif.InfoRequest:
		return r.render(r.info, map[string]string{
			"identifier":       q.Identifier,
			"identifier-shard": ShardPrefix(q.Identifier),
		})
	case iiif.ImageRequest:
		region, ok := q.Region.(iiif.AbsoluteRegion)
		if !ok {
			return "", false
		}
		size, ok := q.Size.(iiif.AbsoluteSize)
		if !ok {
			return "", false
		}
		if (q.Rotation != iiif.Rotation{}) || q.Quality != iiif.QualityDefault || q.Format != "jpg" {
			return "", false
		}
		bindings := map[string]string{
			"identifier":       q.Identifier,
			"identifier-shard": ShardPrefix(q.Identifier),
			"region":           iiif.FormatRegion(region),
			"region.x":         iiif.FormatNormalisedNumber(float64(region.X)),
			"region.y":         iiif.FormatNormalisedNumber(float64(region.Y)),
			"region.w":         iiif.FormatNormalisedNumber(float64(region.Width)),
			"region.h":         iiif.FormatNormalisedNumber(float64(region.Height)),
			"size":             iiif.FormatSize(size),
			"size.w":           "",
			"size.h":           "",
			"rotation":         iiif.FormatRotation(q.Rotation),
			"quality":          string(q.Quality),
			"format":           q.Format,
		}
		if size.Width.Present {
			bindings["size.w"] = iiif.FormatNormalisedNumber(float64(size.Width.Value))
		}
		if size.Height.Present {
			bindings["size.h"] = iiif.FormatNormalisedNumber(float64(size.Height.Value))
		}
		return r.render(r.image, bindings)
	}
	return "", false
}

func (r *Resolver) render(t *Template, bindings map[string]string) (string, bool) {
	key, err := t.Render(bindings)
	if err != nil {
		return "", false
	}
	// identifiers are opaque request input; a "." or ".." identifier
	// must not become a traversal
	if err := validateRelativePath(key); err != nil {
		return "", false
	}
	return key, true
}

// ShardPrefix derives a fixed-depth shard path from the identifier, two
// hex-pair directory levels from its 64-bit hash.
func ShardPrefix(identifier string) string {
	sum := xxhash.Sum64String(identifier)
	parts := make([]string, shardSegments)
	for i := range parts {
		parts[i] = fmt.Sprintf("%02x", byte(sum>>(8*uint(i))))
	}
	return strings.Join(parts, "/")
}
