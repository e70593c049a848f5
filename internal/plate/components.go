package plate

import "image"

// ComponentAnalyzer labels 8-connected foreground regions of binary images.
// The zero value is ready to use.
type ComponentAnalyzer struct{}

// point is a pixel position relative to the image origin.
type point struct {
	x, y int
}

// FindComponents returns the foreground components of bin in label order.
//
// Labels are assigned in raster order (top-to-bottom, left-to-right): the
// component containing the first foreground pixel met by the scan gets
// label 1. The result is never nil; an all-background image yields an empty
// slice.
func (a ComponentAnalyzer) FindComponents(bin *image.Gray) []Component {
	_, comps := a.Label(bin)
	return comps
}

// Label returns the row-major label matrix of bin (0 for background) along
// with the components. Any nonzero pixel is foreground.
func (ComponentAnalyzer) Label(bin *image.Gray) ([]int, []Component) {
	bounds := bin.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	labels := make([]int, width*height)
	comps := make([]Component, 0)

	isForeground := func(x, y int) bool {
		return bin.Pix[bin.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] != 0
	}

	stack := make([]point, 0, 64)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if labels[y*width+x] != 0 || !isForeground(x, y) {
				continue
			}

			label := len(comps) + 1
			minX, minY, maxX, maxY := x, y, x, y
			area := 0

			// Iterative flood fill; a recursive one overflows on large blobs.
			labels[y*width+x] = label
			stack = append(stack[:0], point{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				area++

				if p.x < minX {
					minX = p.x
				}
				if p.x > maxX {
					maxX = p.x
				}
				if p.y < minY {
					minY = p.y
				}
				if p.y > maxY {
					maxY = p.y
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.x+dx, p.y+dy
						if nx < 0 || nx >= width || ny < 0 || ny >= height {
							continue
						}
						idx := ny*width + nx
						if labels[idx] != 0 || !isForeground(nx, ny) {
							continue
						}
						labels[idx] = label
						stack = append(stack, point{nx, ny})
					}
				}
			}

			comps = append(comps, Component{
				Label: label,
				Box: BoundingBox{
					X:      minX,
					Y:      minY,
					Width:  maxX - minX + 1,
					Height: maxY - minY + 1,
				},
				Area: area,
			})
		}
	}

	return labels, comps
}

// ExtractROI is the method form of the package-level ExtractROI.
func (ComponentAnalyzer) ExtractROI(img *image.Gray, box BoundingBox) *image.Gray {
	return ExtractROI(img, box)
}

// ExtractROI copies the part of img covered by box into a new image with
// origin (0,0). box is relative to the top-left corner of img and is
// clipped to it; if nothing is left the result is a 0x0 image. The copy
// never aliases img.
func ExtractROI(img *image.Gray, box BoundingBox) *image.Gray {
	bounds := img.Bounds()
	r := box.Rect().Add(bounds.Min).Intersect(bounds)
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		off := img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], img.Pix[off:off+r.Dx()])
	}
	return dst
}
