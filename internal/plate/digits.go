package plate

import (
	"fmt"
	"image"
	"sort"
)

// DigitConfig holds the DigitSegmenter thresholds.
type DigitConfig struct {
	// BinarizeThreshold is the fixed threshold applied to the plate image.
	BinarizeThreshold int `json:"binarize_threshold"`

	// MarginIntensity drops rows whose mean intensity is below it.
	MarginIntensity float64 `json:"margin_intensity"`

	// MarginBottomRows is the number of bottom rows always dropped.
	MarginBottomRows int `json:"margin_bottom_rows"`

	// A character's box area must lie within
	// totalArea/MinAreaDivisor .. totalArea/MaxAreaDivisor.
	MinAreaDivisor float64 `json:"min_area_divisor"`
	MaxAreaDivisor float64 `json:"max_area_divisor"`
}

// DefaultDigitConfig returns the thresholds tuned for single-row plates.
func DefaultDigitConfig() DigitConfig {
	return DigitConfig{
		BinarizeThreshold: 140,
		MarginIntensity:   100,
		MarginBottomRows:  15,
		MinAreaDivisor:    62,
		MaxAreaDivisor:    6,
	}
}

// DigitSegmenter splits a plate region into character-sized regions. It
// locates characters but never identifies them.
type DigitSegmenter struct {
	cfg       DigitConfig
	binarizer *Binarizer
	analyzer  ComponentAnalyzer
}

// NewDigitSegmenter validates cfg and returns a segmenter using it.
func NewDigitSegmenter(cfg DigitConfig) (*DigitSegmenter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	bin, err := NewBinarizer(BinarizeConfig{Mode: ModeFixed, Threshold: cfg.BinarizeThreshold})
	if err != nil {
		return nil, err
	}
	return &DigitSegmenter{cfg: cfg, binarizer: bin}, nil
}

// Extract returns the character regions of region ordered left to right.
//
// Boxes and images are relative to the plate after margin cropping. A plate
// with nothing left after cropping yields an empty slice and no error.
func (d *DigitSegmenter) Extract(region *PlateRegion) ([]DigitRegion, error) {
	if region == nil || region.Image == nil {
		return nil, fmt.Errorf("%w: plate region has no image", ErrMissingImageData)
	}

	bin, err := d.binarizer.Binarize(region.Image)
	if err != nil {
		return nil, err
	}

	cropped := d.CropMargins(bin)
	bounds := cropped.Bounds()
	if bounds.Empty() {
		return []DigitRegion{}, nil
	}

	totalArea := float64(bounds.Dx() * bounds.Dy())
	minArea := totalArea / d.cfg.MinAreaDivisor
	maxArea := totalArea / d.cfg.MaxAreaDivisor

	digits := make([]DigitRegion, 0)
	for _, c := range d.analyzer.FindComponents(invert(cropped)) {
		area := float64(c.Box.Area())
		if area < minArea || area > maxArea {
			continue
		}
		digits = append(digits, DigitRegion{
			Box:   c.Box,
			Image: ExtractROI(cropped, c.Box),
		})
	}

	sort.SliceStable(digits, func(i, j int) bool {
		return digits[i].Box.X < digits[j].Box.X
	})
	for i := range digits {
		digits[i].Index = i
	}
	return digits, nil
}

// CropMargins removes rows whose mean intensity is below MarginIntensity
// and, unconditionally, the last MarginBottomRows rows. Remaining rows keep
// their order. The result has origin (0,0) and may have zero height.
func (d *DigitSegmenter) CropMargins(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	keepUntil := height - d.cfg.MarginBottomRows

	kept := make([]int, 0, height)
	for y := 0; y < keepUntil; y++ {
		off := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		sum := 0
		for _, v := range img.Pix[off : off+width] {
			sum += int(v)
		}
		mean := 0.0
		if width > 0 {
			mean = float64(sum) / float64(width)
		}
		if mean < d.cfg.MarginIntensity {
			continue
		}
		kept = append(kept, y)
	}

	if width == 0 || len(kept) == 0 {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}

	dst := image.NewGray(image.Rect(0, 0, width, len(kept)))
	for i, y := range kept {
		off := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(dst.Pix[i*dst.Stride:i*dst.Stride+width], img.Pix[off:off+width])
	}
	return dst
}

// invert returns 255-p for every pixel.
func invert(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		off := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		row := dst.Pix[y*dst.Stride : y*dst.Stride+bounds.Dx()]
		for x, v := range img.Pix[off : off+bounds.Dx()] {
			row[x] = 255 - v
		}
	}
	return dst
}
