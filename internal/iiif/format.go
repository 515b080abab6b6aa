package iiif

import (
	"strconv"
	"strings"
)

// FormatRequest renders a request back into path segments. It is the
// left inverse of ParseRequest: parsing the formatted segments yields
// the same value. Real numbers come out in normalised form, so two
// spellings of the same value ("1.50", "1.5") format identically.
func FormatRequest(req Request) []string {
	switch r := req.(type) {
	case InfoRequest:
		if !r.HasName {
			return []string{r.Identifier}
		}
		return []string{r.Identifier, r.Name}
	case ImageRequest:
		return []string{
			r.Identifier,
			FormatRegion(r.Region),
			FormatSize(r.Size),
			FormatRotation(r.Rotation),
			string(r.Quality) + "." + r.Format,
		}
	}
	return nil
}

// FormatPath renders a request as a rooted URL path.
func FormatPath(req Request) string {
	return "/" + strings.Join(FormatRequest(req), "/")
}

func FormatRegion(region Region) string {
	switch r := region.(type) {
	case NamedRegion:
		return r.Name
	case AbsoluteRegion:
		return formatInt(r.X) + "," + formatInt(r.Y) + "," + formatInt(r.Width) + "," + formatInt(r.Height)
	case RelativeRegion:
		return "pct:" + FormatNormalisedNumber(r.X) + "," + FormatNormalisedNumber(r.Y) +
			"," + FormatNormalisedNumber(r.Width) + "," + FormatNormalisedNumber(r.Height)
	}
	return ""
}

func FormatSize(size Size) string {
	switch s := size.(type) {
	case NamedSize:
		return s.Name
	case RelativeSize:
		return "pct:" + FormatNormalisedNumber(s.Percent)
	case BestFitSize:
		return "!" + formatInt(s.Width) + "," + formatInt(s.Height)
	case AbsoluteSize:
		var w, h string
		if s.Width.Present {
			w = formatInt(s.Width.Value)
		}
		if s.Height.Present {
			h = formatInt(s.Height.Value)
		}
		return w + "," + h
	}
	return ""
}

func FormatRotation(rot Rotation) string {
	if rot.Mirrored {
		return "!" + FormatNormalisedNumber(rot.Degrees)
	}
	return FormatNormalisedNumber(rot.Degrees)
}

// FormatNormalisedNumber renders n fixed to 10 decimal places, then
// strips trailing zeros and a trailing decimal point. This gives every
// numeric value a single canonical spelling regardless of how the float
// would print by default.
func FormatNormalisedNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', 10, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
