package plate

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ToGray returns img as a single-channel image with origin (0,0).
//
// *image.Gray input with a zero origin is returned as is. Anything else is
// converted with BT.601 luma weights (0.299, 0.587, 0.114).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	if g, ok := img.(*image.Gray); ok {
		return ExtractROI(g, boxFromRect(g.Rect.Sub(g.Rect.Min)))
	}
	return redChannel(imaging.Grayscale(img))
}

// redChannel copies the R channel of an image whose channels are equal into
// a Gray image.
func redChannel(src image.Image) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < bounds.Dy(); y++ {
			off := s.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				row[x] = s.Pix[off+x*4]
			}
		}
	case *image.RGBA:
		for y := 0; y < bounds.Dy(); y++ {
			off := s.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				row[x] = s.Pix[off+x*4]
			}
		}
	default:
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				r, _, _, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				dst.Pix[y*dst.Stride+x] = uint8(r >> 8)
			}
		}
	}
	return dst
}

// denoise applies a median filter. A non-positive radius returns gray
// unchanged.
func denoise(gray *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return gray
	}
	return redChannel(effect.Median(gray, radius))
}

// morph applies op to a binary image and snaps the result back to
// Background/Foreground.
func morph(bin *image.Gray, op MorphOp, radius float64) *image.Gray {
	var out image.Image
	switch op {
	case MorphDilate:
		out = effect.Dilate(bin, radius)
	case MorphErode:
		out = effect.Erode(bin, radius)
	case MorphOpen:
		out = effect.Dilate(effect.Erode(bin, radius), radius)
	case MorphClose:
		out = effect.Erode(effect.Dilate(bin, radius), radius)
	default:
		return bin
	}
	return applyThreshold(redChannel(out), 127)
}
