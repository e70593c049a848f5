package plate

import (
	"image"
	"image/color"
)

// createGrayImage creates a solid gray image
func createGrayImage(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// fillGray paints the rectangle (x, y, w, h) with v
func fillGray(img *image.Gray, x, y, w, h int, v uint8) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			img.SetGray(xx, yy, color.Gray{Y: v})
		}
	}
}

// drawStripedPlate draws a white w x h plate at (x, y) with `stripes` dark
// vertical bars, 4px wide and 20px apart, from row 5 to row h-6 of the
// plate. The white border above and below the bars keeps the plate a single
// component.
func drawStripedPlate(img *image.Gray, x, y, w, h, stripes int) {
	fillGray(img, x, y, w, h, 255)
	for i := 0; i < stripes; i++ {
		fillGray(img, x+20*(i+1), y+5, 4, h-10, 0)
	}
}

// createSceneImage creates a 400x400 black frame holding:
//   - a 152x40 plate with 6 bars at (100,150), normalized transitions 60
//   - a plain 152x40 bar at (100,300) with no transitions
//   - a 60x60 square at (300,30), wrong aspect ratio
func createSceneImage() *image.Gray {
	img := createGrayImage(400, 400, 0)
	drawStripedPlate(img, 100, 150, 152, 40, 6)
	fillGray(img, 100, 300, 152, 40, 255)
	fillGray(img, 300, 30, 60, 60, 255)
	return img
}

// toRGBA copies a gray image into an RGBA one
func toRGBA(src *image.Gray) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}

// isBinary reports whether every pixel is Background or Foreground
func isBinary(img *image.Gray) bool {
	for _, v := range img.Pix {
		if v != Background && v != Foreground {
			return false
		}
	}
	return true
}
