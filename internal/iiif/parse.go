package iiif

import (
	"regexp"
	"strconv"
	"strings"
)

// Numeric fields allow up to 10 integer digits and, where fractions are
// admitted, a dot followed by up to 10 fractional digits. The fraction
// may be empty ("0." parses as 0), matching upstream behaviour.
const (
	intPat  = `\d{1,10}`
	realPat = `\d{1,10}(?:\.\d{0,10})?`

	// largest integer the ten-digit fields can spell
	maxNumeral = 9999999999
)

var (
	absRegionRe = regexp.MustCompile(`^(` + intPat + `),(` + intPat + `),(` + intPat + `),(` + intPat + `)$`)
	pctRegionRe = regexp.MustCompile(`^pct:(` + realPat + `),(` + realPat + `),(` + realPat + `),(` + realPat + `)$`)
	pctSizeRe   = regexp.MustCompile(`^pct:(` + realPat + `)$`)
	absSizeRe   = regexp.MustCompile(`^(!?)(` + intPat + `)?,(` + intPat + `)?$`)
	rotationRe  = regexp.MustCompile(`^(!?)(-?` + realPat + `)$`)
	nameRe      = regexp.MustCompile(`^(color|gray|bitonal|default)\.([A-Za-z0-9]+)$`)
)

// ParseRequest interprets the path segments of an incoming request
// (split on "/", leading empty segment already removed). It reports
// false for anything that is not a well-formed IIIF request; there is
// no partial result and no diagnostic, callers map false to not-found.
func ParseRequest(segments []string) (Request, bool) {
	if len(segments) == 0 || segments[0] == "" {
		return nil, false
	}
	identifier := segments[0]

	switch len(segments) {
	case 1:
		return InfoRequest{Identifier: identifier}, true
	case 2:
		if name := segments[1]; name == "" || name == "info.json" {
			return InfoRequest{Identifier: identifier, Name: name, HasName: true}, true
		}
		return nil, false
	case 5:
		region, ok := ParseRegion(segments[1])
		if !ok {
			return nil, false
		}
		size, ok := ParseSize(segments[2])
		if !ok {
			return nil, false
		}
		rotation, ok := ParseRotation(segments[3])
		if !ok {
			return nil, false
		}
		quality, format, ok := ParseName(segments[4])
		if !ok {
			return nil, false
		}
		return ImageRequest{
			Identifier: identifier,
			Region:     region,
			Size:       size,
			Rotation:   rotation,
			Quality:    quality,
			Format:     format,
		}, true
	default:
		return nil, false
	}
}

// ParsePath is ParseRequest over a raw request path. The leading "/" is
// stripped before splitting.
func ParsePath(path string) (Request, bool) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, false
	}
	return ParseRequest(strings.Split(path, "/"))
}

func ParseRegion(s string) (Region, bool) {
	switch s {
	case "full", "square":
		return NamedRegion{Name: s}, true
	}
	if m := pctRegionRe.FindStringSubmatch(s); m != nil {
		return RelativeRegion{
			X:      parseReal(m[1]),
			Y:      parseReal(m[2]),
			Width:  parseReal(m[3]),
			Height: parseReal(m[4]),
		}, true
	}
	if m := absRegionRe.FindStringSubmatch(s); m != nil {
		return AbsoluteRegion{
			X:      parseInt(m[1]),
			Y:      parseInt(m[2]),
			Width:  parseInt(m[3]),
			Height: parseInt(m[4]),
		}, true
	}
	return nil, false
}

func ParseSize(s string) (Size, bool) {
	switch s {
	case "full", "max":
		return NamedSize{Name: s}, true
	}
	if m := pctSizeRe.FindStringSubmatch(s); m != nil {
		return RelativeSize{Percent: parseReal(m[1])}, true
	}
	m := absSizeRe.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	bang, w, h := m[1] == "!", m[2], m[3]
	if bang {
		// best-fit requires both dimensions
		if w == "" || h == "" {
			return nil, false
		}
		return BestFitSize{Width: parseInt(w), Height: parseInt(h)}, true
	}
	if w == "" && h == "" {
		return nil, false
	}
	size := AbsoluteSize{}
	if w != "" {
		size.Width = Int(parseInt(w))
	}
	if h != "" {
		size.Height = Int(parseInt(h))
	}
	return size, true
}

func ParseRotation(s string) (Rotation, bool) {
	m := rotationRe.FindStringSubmatch(s)
	if m == nil {
		return Rotation{}, false
	}
	return Rotation{Mirrored: m[1] == "!", Degrees: parseReal(m[2])}, true
}

// ParseName splits the final quality.format segment. Quality matching
// is case-sensitive; format is any run of ASCII letters and digits.
func ParseName(s string) (Quality, string, bool) {
	m := nameRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return Quality(m[1]), m[2], true
}

// The patterns above bound digit counts and sign, so conversion cannot
// fail on matched input.
func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseReal(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
