// Package iiif parses, formats and canonicalises IIIF Image API 2.1
// request paths. It is a pure text transformation: no I/O, no knowledge
// of actual image dimensions.
package iiif

// Quality is one of the four IIIF 2.1 quality literals. Matching is
// case-sensitive.
type Quality string

const (
	QualityColor   Quality = "color"
	QualityGray    Quality = "gray"
	QualityBitonal Quality = "bitonal"
	QualityDefault Quality = "default"
)

// Request is either an InfoRequest or an ImageRequest. All request
// values are immutable and comparable with ==; Canonical relies on
// structural equality to report "already canonical".
type Request interface {
	request()
}

// InfoRequest asks for image metadata. Name distinguishes the three
// accepted spellings: absent (bare /{identifier}), empty
// (/{identifier}/) and "info.json".
type InfoRequest struct {
	Identifier string
	Name       string
	HasName    bool
}

// ImageRequest asks for pixel data.
type ImageRequest struct {
	Identifier string
	Region     Region
	Size       Size
	Rotation   Rotation
	Quality    Quality
	Format     string
}

func (InfoRequest) request()  {}
func (ImageRequest) request() {}

// Region is the second path segment of an image request.
type Region interface {
	region()
}

type NamedRegion struct {
	Name string // "full" or "square"
}

// AbsoluteRegion is a pixel-unit x,y,w,h region.
type AbsoluteRegion struct {
	X, Y, Width, Height int64
}

// RelativeRegion is a pct: region. Values are not bounded to [0,100];
// the grammar deliberately enforces nothing beyond the numeric pattern.
type RelativeRegion struct {
	X, Y, Width, Height float64
}

func (NamedRegion) region()    {}
func (AbsoluteRegion) region() {}
func (RelativeRegion) region() {}

// Size is the third path segment of an image request.
type Size interface {
	size()
}

type NamedSize struct {
	Name string // "full" or "max"
}

// RelativeSize is a pct: size.
type RelativeSize struct {
	Percent float64
}

// AbsoluteSize carries an explicit width and/or height. At least one
// side is always present; the parser never constructs a value with both
// absent.
type AbsoluteSize struct {
	Width, Height OptInt
}

// BestFitSize bounds both dimensions while preserving aspect ratio
// (the !w,h form). Both sides are required.
type BestFitSize struct {
	Width, Height int64
}

func (NamedSize) size()    {}
func (RelativeSize) size() {}
func (AbsoluteSize) size() {}
func (BestFitSize) size()  {}

// OptInt is an optional integer. A struct rather than a pointer so that
// sizes stay comparable with ==.
type OptInt struct {
	Value   int64
	Present bool
}

func Int(v int64) OptInt { return OptInt{Value: v, Present: true} }

// Rotation is the fourth path segment. Degrees may be any sign and
// magnitude the grammar admits; Canonical folds it into [0,360).
type Rotation struct {
	Degrees  float64
	Mirrored bool
}
