package iiif

import "math"

// Canonical rewrites a request into the canonical form reachable
// without knowing the source image's true pixel dimensions. An already
// canonical request comes back unchanged, so callers can compare the
// result against the input to decide whether a redirect is needed.
func Canonical(req Request) Request {
	switch r := req.(type) {
	case InfoRequest:
		if r.HasName && r.Name == "info.json" {
			return r
		}
		r.Name = "info.json"
		r.HasName = true
		return r
	case ImageRequest:
		rotation, rotationChanged := canonicalRotation(r.Rotation)
		size, sizeChanged := canonicalSize(r.Region, r.Size)
		if !rotationChanged && !sizeChanged {
			return r
		}
		r.Rotation = rotation
		r.Size = size
		return r
	}
	return req
}

// canonicalRotation folds degrees into [0, 360). The mirror flag is
// untouched.
func canonicalRotation(rot Rotation) (Rotation, bool) {
	if rot.Degrees >= 0 && rot.Degrees < 360 {
		return rot, false
	}
	d := math.Mod(rot.Degrees, 360)
	if d < 0 {
		d += 360
	}
	if d == 0 {
		d = 0 // never negative zero
	}
	return Rotation{Degrees: d, Mirrored: rot.Mirrored}, true
}

// canonicalSize reduces an absolute size against an absolute region.
// A lone width is the minimal form; a lone height is rewritten to the
// width it implies; a redundant height (one the proportional-scale-
// then-round rule would reproduce from the width) is dropped. All other
// region/size combinations need true image dimensions and pass through.
func canonicalSize(region Region, size Size) (Size, bool) {
	abs, ok := region.(AbsoluteRegion)
	if !ok {
		return size, false
	}
	s, ok := size.(AbsoluteSize)
	if !ok {
		return size, false
	}
	if !s.Height.Present {
		return size, false
	}
	// Degenerate zero-extent regions make the proportion undefined;
	// leave the request as given.
	if abs.Width == 0 || abs.Height == 0 {
		return size, false
	}

	h := float64(s.Height.Value)
	if !s.Width.Present {
		w := math.Round(float64(abs.Width) * (h / float64(abs.Height)))
		// An implied width the grammar cannot spell stays unreduced.
		if w > maxNumeral {
			return size, false
		}
		return AbsoluteSize{Width: Int(int64(w))}, true
	}

	// Heights in [rh*(w-0.5)/rw, rh*(w+0.5)/rw] round-trip to the same
	// width under proportional scaling, so such a height carries no
	// information of its own.
	w := float64(s.Width.Value)
	lo := float64(abs.Height) * (w - 0.5) / float64(abs.Width)
	hi := float64(abs.Height) * (w + 0.5) / float64(abs.Width)
	if h >= lo && h <= hi {
		return AbsoluteSize{Width: s.Width}, true
	}
	return size, false
}
