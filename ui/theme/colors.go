package theme

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"
)

// Parses a CSS-style #RRGGBB or #RRGGBBAA string
func ColorStringToColor(colorStr string) (color.Color, error) {
	if !strings.HasPrefix(colorStr, "#") || !slices.Contains([]int{7, 9}, len(colorStr)) {
		return color.Black, errors.New("invalid color string")
	}
	colorBytes := make([]byte, 4)
	n, err := hex.Decode(colorBytes, []byte(colorStr[1:]))
	if err != nil {
		return color.Black, fmt.Errorf("invalid color string: %s", err.Error())
	}
	if n == 3 {
		colorBytes[3] = 255 // opaque alpha
	}
	return color.RGBA{R: colorBytes[0], G: colorBytes[1], B: colorBytes[2], A: colorBytes[3]}, nil
}

func BlendColors(a, b color.Color, fractionA float64) color.Color {
	ra, ga, ba, aa := a.RGBA()
	rb, gb, bb, ab := b.RGBA()

	fractionB := 1 - fractionA
	rAvg := uint8(float64(ra/257)*fractionA + float64(rb/257)*fractionB)
	gAvg := uint8(float64(ga/257)*fractionA + float64(gb/257)*fractionB)
	bAvg := uint8(float64(ba/257)*fractionA + float64(bb/257)*fractionB)
	aAvg := uint8(float64(aa/257)*fractionA + float64(ab/257)*fractionB)
	return color.RGBA{R: rAvg, G: gAvg, B: bAvg, A: aAvg}
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

// IsLight reports whether c is light enough to need dark text on top.
func IsLight(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	// ITU-R BT.601 luma
	y := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
	return y > 160
}

func brightenColor(c color.Color, fraction float64) color.Color {
	r, g, b, a := c.RGBA()
	r, g, b = brightenComponent(r, fraction), brightenComponent(g, fraction), brightenComponent(b, fraction)
	return color.RGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
}

func brightenComponent(component uint32, fraction float64) uint32 {
	brightened := component + uint32(float64(component)*fraction)
	if brightened > 0xffff {
		brightened = 0xffff
	}
	return brightened
}
