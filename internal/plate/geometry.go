package plate

import "image"

// BoundingBox is an axis-aligned rectangle in pixel coordinates.
//
// (X, Y) is the top-left corner; the box covers X..X+Width-1 horizontally
// and Y..Y+Height-1 vertically.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// AspectRatio returns Width/Height, or 0 for a box with no height.
func (b BoundingBox) AspectRatio() float64 {
	if b.Height == 0 {
		return 0
	}
	return float64(b.Width) / float64(b.Height)
}

// Rect converts the box to an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Contains reports whether (x, y) lies inside the box. Both edges are
// inclusive, so the point (X+Width, Y+Height) is contained.
func (b BoundingBox) Contains(x, y int) bool {
	return b.X <= x && x <= b.X+b.Width &&
		b.Y <= y && y <= b.Y+b.Height
}

// boxFromRect converts an image.Rectangle to a BoundingBox.
func boxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Component is one 8-connected foreground region of a binary image.
type Component struct {
	// Label is the component id, starting at 1. Label 0 is the background
	// and is never reported.
	Label int `json:"label"`

	// Box is the tight bounding box of the component's pixels.
	Box BoundingBox `json:"box"`

	// Area is the number of foreground pixels in the component.
	Area int `json:"area"`
}
