package plate

import (
	"fmt"
	"image"
	"math"
)

// GeometricFilter rejects components whose shape or size cannot be a plate.
// All bounds are inclusive.
type GeometricFilter struct {
	// MinAspect and MaxAspect bound width/height. Plates are wide
	// rectangles, roughly 3:1.
	MinAspect float64 `json:"min_aspect"`
	MaxAspect float64 `json:"max_aspect"`

	// MinAreaRatio and MaxAreaRatio bound totalArea/boxArea, i.e. how small
	// the candidate is relative to the whole frame.
	MinAreaRatio float64 `json:"min_area_ratio"`
	MaxAreaRatio float64 `json:"max_area_ratio"`
}

// CheckAspect reports whether the box's aspect ratio is within bounds. A box
// with zero height has aspect ratio 0.
func (g GeometricFilter) CheckAspect(box BoundingBox) bool {
	ratio := box.AspectRatio()
	return g.MinAspect <= ratio && ratio <= g.MaxAspect
}

// CheckArea reports whether totalArea/box.Area() is within bounds. A box
// with zero area is always rejected.
func (g GeometricFilter) CheckArea(box BoundingBox, totalArea int) bool {
	area := box.Area()
	if area <= 0 {
		return false
	}
	ratio := float64(totalArea) / float64(area)
	return g.MinAreaRatio <= ratio && ratio <= g.MaxAreaRatio
}

// Evaluate runs both checks and, on rejection, describes which one failed.
func (g GeometricFilter) Evaluate(box BoundingBox, totalArea int) (bool, string) {
	if !g.CheckAspect(box) {
		return false, fmt.Sprintf("aspect ratio %.2f outside %.2f..%.2f",
			box.AspectRatio(), g.MinAspect, g.MaxAspect)
	}
	if !g.CheckArea(box, totalArea) {
		if box.Area() <= 0 {
			return false, "zero area"
		}
		return false, fmt.Sprintf("area ratio %.2f outside %.2f..%.2f",
			float64(totalArea)/float64(box.Area()), g.MinAreaRatio, g.MaxAreaRatio)
	}
	return true, ""
}

// TransitionFilter measures how many foreground/background edges cross a
// region horizontally. Rows of printed characters produce many such edges;
// solid blobs and most background clutter produce few.
type TransitionFilter struct {
	// Proportions are the sampled rows as fractions of the region height.
	Proportions []float64 `json:"proportions"`

	// Measure picks which bound pair Accept checks.
	Measure Measure `json:"measure"`

	MinNormalized float64 `json:"min_normalized"`
	MaxNormalized float64 `json:"max_normalized"`

	MinRaw float64 `json:"min_raw"`
	MaxRaw float64 `json:"max_raw"`
}

// Count sums |row[x+1]-row[x]| over every sampled row of roi.
//
// The sampled row for proportion p is int(height*p), clamped to the last
// row. Regions with no rows or fewer than two columns count 0.
func (t TransitionFilter) Count(roi *image.Gray) int {
	bounds := roi.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if height == 0 || width < 2 {
		return 0
	}

	total := 0
	for _, p := range t.Proportions {
		row := clamp(int(float64(height)*p), 0, height-1)
		off := roi.PixOffset(bounds.Min.X, bounds.Min.Y+row)
		pix := roi.Pix[off : off+width]
		for x := 1; x < width; x++ {
			d := int(pix[x]) - int(pix[x-1])
			if d < 0 {
				d = -d
			}
			total += d
		}
	}
	return total
}

// Normalize divides a transition total by width+1. Negative widths are
// treated as zero so the divisor is never below one.
func (TransitionFilter) Normalize(total, width int) float64 {
	if width < 0 {
		width = 0
	}
	return float64(total) / float64(width+1)
}

// Accept checks the configured measure against its inclusive bounds.
func (t TransitionFilter) Accept(total int, normalized float64) bool {
	if t.Measure == MeasureRaw {
		raw := float64(total)
		return t.MinRaw <= raw && raw <= t.MaxRaw
	}
	return t.MinNormalized <= normalized && normalized <= t.MaxNormalized
}

// ConfidenceScorer maps a normalized transition value to [0,1]: 1 at Ideal,
// falling linearly to 0 at Ideal±Spread and beyond. It ranks plates; it
// never decides whether one is kept.
type ConfidenceScorer struct {
	Ideal  float64 `json:"ideal"`
	Spread float64 `json:"spread"`
}

// Score returns max(0, 1 - |normalized-Ideal|/Spread), or 0 when Spread is
// not positive.
func (s ConfidenceScorer) Score(normalized float64) float64 {
	if s.Spread <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(normalized-s.Ideal)/s.Spread)
}
