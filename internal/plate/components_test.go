package plate

import (
	"image"
	"testing"
)

func TestFindComponentsAllBackground(t *testing.T) {
	comps := ComponentAnalyzer{}.FindComponents(createGrayImage(20, 20, 0))
	if comps == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(comps) != 0 {
		t.Errorf("got %d components, want 0", len(comps))
	}
}

func TestFindComponentsSinglePixel(t *testing.T) {
	img := createGrayImage(10, 10, 0)
	img.Pix[img.PixOffset(3, 7)] = 255

	comps := ComponentAnalyzer{}.FindComponents(img)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}

	c := comps[0]
	if c.Label != 1 {
		t.Errorf("Label: got %d, want 1", c.Label)
	}
	if c.Area != 1 {
		t.Errorf("Area: got %d, want 1", c.Area)
	}
	want := BoundingBox{X: 3, Y: 7, Width: 1, Height: 1}
	if c.Box != want {
		t.Errorf("Box: got %+v, want %+v", c.Box, want)
	}
}

func TestFindComponentsDiagonalConnectivity(t *testing.T) {
	img := createGrayImage(5, 5, 0)
	for i := 0; i < 5; i++ {
		img.Pix[img.PixOffset(i, i)] = 255
	}

	comps := ComponentAnalyzer{}.FindComponents(img)
	if len(comps) != 1 {
		t.Fatalf("diagonal line: got %d components, want 1", len(comps))
	}
	if comps[0].Area != 5 {
		t.Errorf("Area: got %d, want 5", comps[0].Area)
	}
	want := BoundingBox{X: 0, Y: 0, Width: 5, Height: 5}
	if comps[0].Box != want {
		t.Errorf("Box: got %+v, want %+v", comps[0].Box, want)
	}
}

func TestFindComponentsRasterOrder(t *testing.T) {
	img := createGrayImage(30, 30, 0)
	fillGray(img, 20, 10, 3, 3, 255) // second in scan order
	fillGray(img, 2, 2, 3, 3, 255)   // first
	fillGray(img, 0, 20, 3, 3, 255)  // third

	comps := ComponentAnalyzer{}.FindComponents(img)
	if len(comps) != 3 {
		t.Fatalf("got %d components, want 3", len(comps))
	}

	wantX := []int{2, 20, 0}
	for i, c := range comps {
		if c.Label != i+1 {
			t.Errorf("component %d: label %d, want %d", i, c.Label, i+1)
		}
		if c.Box.X != wantX[i] {
			t.Errorf("component %d: X %d, want %d", i, c.Box.X, wantX[i])
		}
		if c.Area != 9 {
			t.Errorf("component %d: area %d, want 9", i, c.Area)
		}
	}
}

func TestLabelMatrix(t *testing.T) {
	img := createGrayImage(6, 2, 0)
	fillGray(img, 0, 0, 2, 2, 255)
	fillGray(img, 4, 0, 2, 2, 128)

	labels, comps := ComponentAnalyzer{}.Label(img)
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}

	want := []int{
		1, 1, 0, 0, 2, 2,
		1, 1, 0, 0, 2, 2,
	}
	for i, v := range want {
		if labels[i] != v {
			t.Errorf("labels[%d]: got %d, want %d", i, labels[i], v)
		}
	}
}

func TestFindComponentsLargeBlob(t *testing.T) {
	// A recursive fill would blow the stack here.
	img := createGrayImage(1000, 1000, 255)

	comps := ComponentAnalyzer{}.FindComponents(img)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if comps[0].Area != 1000*1000 {
		t.Errorf("Area: got %d, want %d", comps[0].Area, 1000*1000)
	}
}

func TestExtractROI(t *testing.T) {
	img := createGrayImage(20, 10, 0)
	fillGray(img, 5, 2, 4, 3, 200)

	tests := []struct {
		name       string
		box        BoundingBox
		wantWidth  int
		wantHeight int
	}{
		{"inside", BoundingBox{X: 5, Y: 2, Width: 4, Height: 3}, 4, 3},
		{"clipped right", BoundingBox{X: 15, Y: 0, Width: 10, Height: 10}, 5, 10},
		{"clipped negative", BoundingBox{X: -3, Y: -3, Width: 5, Height: 5}, 2, 2},
		{"outside", BoundingBox{X: 40, Y: 40, Width: 5, Height: 5}, 0, 0},
		{"zero size", BoundingBox{X: 1, Y: 1}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roi := ExtractROI(img, tt.box)
			b := roi.Bounds()
			if b.Min != (image.Point{}) {
				t.Errorf("origin: got %v, want (0,0)", b.Min)
			}
			if b.Dx() != tt.wantWidth || b.Dy() != tt.wantHeight {
				t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestExtractROIOwnsPixels(t *testing.T) {
	img := createGrayImage(10, 10, 0)
	fillGray(img, 2, 2, 3, 3, 200)

	roi := ComponentAnalyzer{}.ExtractROI(img, BoundingBox{X: 2, Y: 2, Width: 3, Height: 3})
	for _, v := range roi.Pix {
		if v != 200 {
			t.Fatalf("roi pixel: got %d, want 200", v)
		}
	}

	roi.Pix[0] = 1
	if img.GrayAt(2, 2).Y != 200 {
		t.Error("writing to the ROI modified the source image")
	}
}
