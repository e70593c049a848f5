package plate

import (
	"fmt"
	"image"
)

// Pixel values of a binary image.
const (
	Background uint8 = 0
	Foreground uint8 = 255
)

// Binarizer reduces a grayscale image to Background/Foreground pixels.
type Binarizer struct {
	cfg BinarizeConfig
}

// NewBinarizer validates cfg and returns a Binarizer using it.
func NewBinarizer(cfg BinarizeConfig) (*Binarizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeAdaptive && cfg.BlockSize%2 == 0 {
		cfg.BlockSize++
	}
	return &Binarizer{cfg: cfg}, nil
}

// Config returns the configuration in use.
func (b *Binarizer) Config() BinarizeConfig {
	return b.cfg
}

// Binarize thresholds img according to the configured mode.
//
// img must be an 8-bit single-channel *image.Gray; any other type is
// rejected with an error wrapping ErrInvalidInput. The result has the same
// size as img, origin (0,0), and contains only Background and Foreground.
func (b *Binarizer) Binarize(img image.Image) (*image.Gray, error) {
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("%w: binarization needs a single-channel *image.Gray, got %T", ErrInvalidInput, img)
	}

	switch b.cfg.Mode {
	case ModeAdaptive:
		return adaptiveThreshold(gray, b.cfg.BlockSize, b.cfg.C), nil
	case ModeOtsu:
		return applyThreshold(gray, int(OtsuThreshold(gray))), nil
	default:
		return applyThreshold(gray, b.cfg.Threshold), nil
	}
}

// applyThreshold sets pixels strictly above t to Foreground.
func applyThreshold(src *image.Gray, t int) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		srcRow := src.Pix[off : off+width]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		for x, v := range srcRow {
			if int(v) > t {
				dstRow[x] = Foreground
			}
		}
	}
	return dst
}

// OtsuThreshold returns the threshold t that maximizes the between-class
// variance when the histogram is split into pixels <= t and pixels > t.
//
// Uniform images have no split and return their single intensity, which
// applyThreshold turns into an all-background image.
func OtsuThreshold(img *image.Gray) uint8 {
	var histo [256]int
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := img.PixOffset(bounds.Min.X, y)
		for _, v := range img.Pix[off : off+bounds.Dx()] {
			histo[v]++
		}
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	var sumAll float64
	for v, n := range histo {
		sumAll += float64(v) * float64(n)
	}

	var (
		best     uint8
		bestVar  = -1.0
		lowCount int
		lowSum   float64
		seenAny  bool
		firstVal uint8
	)
	for v, n := range histo {
		if n > 0 && !seenAny {
			seenAny = true
			firstVal = uint8(v)
		}
		lowCount += n
		lowSum += float64(v) * float64(n)

		highCount := total - lowCount
		if lowCount == 0 || highCount == 0 {
			continue
		}

		lowMean := lowSum / float64(lowCount)
		highMean := (sumAll - lowSum) / float64(highCount)
		diff := lowMean - highMean
		variance := float64(lowCount) * float64(highCount) * diff * diff

		if variance > bestVar {
			bestVar = variance
			best = uint8(v)
		}
	}

	if bestVar < 0 {
		return firstVal
	}
	return best
}

// adaptiveThreshold marks pixels brighter than the mean of their
// blockSize x blockSize neighbourhood minus c. Borders replicate the edge
// pixels.
func adaptiveThreshold(src *image.Gray, blockSize int, c float64) *image.Gray {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return dst
	}

	half := blockSize / 2
	at := func(x, y int) int {
		return int(src.Pix[src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)])
	}

	// Horizontal box sums, then vertical box sums of those.
	rowSums := make([]int, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := 0
			for k := -half; k <= half; k++ {
				sum += at(clamp(x+k, 0, width-1), y)
			}
			rowSums[y*width+x] = sum
		}
	}

	area := float64(blockSize * blockSize)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := 0
			for k := -half; k <= half; k++ {
				sum += rowSums[clamp(y+k, 0, height-1)*width+x]
			}
			mean := float64(sum) / area
			if float64(at(x, y)) > mean-c {
				dst.Pix[y*dst.Stride+x] = Foreground
			}
		}
	}
	return dst
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
