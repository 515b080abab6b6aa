package iiif

import (
	"math"
	"testing"
)

func TestFormatNormalisedNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1.0 / 3.0, "0.3333333333"},
		{1.2, "1.2"},
		{1.5, "1.5"},
		{100, "100"},
		{50.5, "50.5"},
		{0.0000000001, "0.0000000001"},
		{-10, "-10"},
	}
	for _, c := range cases {
		if got := FormatNormalisedNumber(c.in); got != c.want {
			t.Fatalf("FormatNormalisedNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatRequest_Info(t *testing.T) {
	cases := []struct {
		in   InfoRequest
		want []string
	}{
		{InfoRequest{Identifier: "img1"}, []string{"img1"}},
		{InfoRequest{Identifier: "img1", HasName: true}, []string{"img1", ""}},
		{InfoRequest{Identifier: "img1", Name: "info.json", HasName: true}, []string{"img1", "info.json"}},
	}
	for _, c := range cases {
		got := FormatRequest(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("FormatRequest(%#v) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("FormatRequest(%#v) = %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestFormatRequest_Image(t *testing.T) {
	req := ImageRequest{
		Identifier: "img1",
		Region:     AbsoluteRegion{X: 0, Y: 0, Width: 256, Height: 256},
		Size:       AbsoluteSize{Width: Int(256)},
		Rotation:   Rotation{},
		Quality:    QualityDefault,
		Format:     "jpg",
	}
	if got := FormatPath(req); got != "/img1/0,0,256,256/256,/0/default.jpg" {
		t.Fatalf("FormatPath = %q", got)
	}

	mirrored := req
	mirrored.Rotation = Rotation{Degrees: 92.5, Mirrored: true}
	mirrored.Size = BestFitSize{Width: 10, Height: 20}
	if got := FormatPath(mirrored); got != "/img1/0,0,256,256/!10,20/!92.5/default.jpg" {
		t.Fatalf("FormatPath = %q", got)
	}
}

// "-0" parses (it matches the rotation grammar and equals 0) but renders
// as "0", so both spellings share the canonical path and storage key
func TestFormatRotation_NegativeZero(t *testing.T) {
	rot, ok := ParseRotation("-0")
	if !ok {
		t.Fatal("ParseRotation(\"-0\") rejected")
	}
	if rot != (Rotation{}) {
		t.Fatalf("ParseRotation(\"-0\") = %#v, want zero rotation", rot)
	}
	if got := FormatRotation(rot); got != "0" {
		t.Fatalf("FormatRotation = %q, want \"0\"", got)
	}
}
