package plate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// AnnotateStyle controls how plate outlines are drawn.
type AnnotateStyle struct {
	// LowColor and HighColor are hex colours for confidence 0 and 1. Outlines
	// in between are blended in Lab space.
	LowColor  string `json:"low_color"`
	HighColor string `json:"high_color"`

	// Thickness is the outline width in pixels.
	Thickness int `json:"thickness"`
}

// DefaultAnnotateStyle draws 2px outlines going from red to green.
func DefaultAnnotateStyle() AnnotateStyle {
	return AnnotateStyle{
		LowColor:  "#e74c3c",
		HighColor: "#2ecc71",
		Thickness: 2,
	}
}

// Annotate returns a copy of src with every plate box outlined. src is not
// modified. Boxes are relative to the top-left corner of src.
func Annotate(src image.Image, plates []PlateRegion, style AnnotateStyle) (*image.NRGBA, error) {
	low, err := colorful.Hex(style.LowColor)
	if err != nil {
		return nil, fmt.Errorf("invalid low color %q: %w", style.LowColor, err)
	}
	high, err := colorful.Hex(style.HighColor)
	if err != nil {
		return nil, fmt.Errorf("invalid high color %q: %w", style.HighColor, err)
	}
	thickness := style.Thickness
	if thickness < 1 {
		thickness = 1
	}

	dst := imaging.Clone(src)
	for _, p := range plates {
		r, g, b := low.BlendLab(high, p.Confidence).Clamped().RGB255()
		drawOutline(dst, p.Box.Rect(), thickness, color.NRGBA{R: r, G: g, B: b, A: 255})
	}
	return dst, nil
}

// drawOutline paints a rectangle border growing inwards from r.
func drawOutline(dst *image.NRGBA, r image.Rectangle, thickness int, c color.NRGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		inner := r.Inset(t)
		if inner.Empty() {
			return
		}
		for x := inner.Min.X; x < inner.Max.X; x++ {
			dst.SetNRGBA(x, inner.Min.Y, c)
			dst.SetNRGBA(x, inner.Max.Y-1, c)
		}
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			dst.SetNRGBA(inner.Min.X, y, c)
			dst.SetNRGBA(inner.Max.X-1, y, c)
		}
	}
}
