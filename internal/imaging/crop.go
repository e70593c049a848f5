package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult is a cropped region encoded for transport.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropRegion cuts r out of img and optionally rescales it. r is relative to
// the top-left corner of img and must lie inside it. A scale of 1 or less
// than or equal to 0 keeps the original size.
func CropRegion(img image.Image, r image.Rectangle, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()
	abs := r.Add(bounds.Min)

	if r.Min.X < 0 || r.Min.Y < 0 || abs.Max.X > bounds.Max.X || abs.Max.Y > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Dx(), bounds.Dy())
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, abs)

	if scale != 1.0 && scale > 0 {
		w := int(float64(cropped.Bounds().Dx()) * scale)
		h := int(float64(cropped.Bounds().Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %.3f leaves an empty image", scale)
		}
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}
	return cropped, nil
}

// Crop cuts (x1,y1)-(x2,y2) out of img, rescales it and returns it as
// base64 PNG. (x1,y1) is inclusive and (x2,y2) exclusive.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	cropped, err := CropRegion(img, image.Rect(x1, y1, x2, y2), scale)
	if err != nil {
		return nil, err
	}
	return EncodeBase64(cropped)
}
