package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

// solidImage creates an in-memory image filled with c
func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createTestImage writes a solid image to dir/name and returns its path.
func createTestImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(solidImage(width, height, c), path); err != nil {
		t.Fatalf("failed to save test image: %v", err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, t.TempDir(), "red.png", 100, 60, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x60", bounds.Dx(), bounds.Dy())
	}

	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
	if cache.Len() != 0 {
		t.Error("failed loads should not be cached")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := NewImageCache().Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	dir := t.TempDir()
	a := createTestImage(t, dir, "a.png", 10, 10, color.White)
	b := createTestImage(t, dir, "b.png", 10, 10, color.Black)

	cache := NewImageCache()
	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	cache.Evict("/not/cached.png")
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d entries, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, t.TempDir(), "c.png", 50, 50, color.White)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestOpen_Formats(t *testing.T) {
	dir := t.TempDir()
	src := solidImage(40, 20, color.RGBA{0, 128, 255, 255})

	for _, name := range []string{"a.png", "a.jpg", "a.bmp", "a.tif", "a.gif"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := imaging.Save(src, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			img, err := Open(path)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
				t.Errorf("got %v, want 40x20", img.Bounds())
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"car.JPG":        "jpeg",
		"car.jpeg":       "jpeg",
		"scan.tiff":      "tiff",
		"scan.tif":       "tiff",
		"plate.webp":     "webp",
		"plate.bmp":      "bmp",
		"notes.txt":      "unknown",
		"no_extension":   "unknown",
		"dir/nested.png": "png",
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q): got %q, want %q", path, got, want)
		}
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	createTestImage(t, dir, "b.png", 5, 5, color.White)
	createTestImage(t, dir, "a.jpg", 5, 5, color.White)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644)
	os.Mkdir(filepath.Join(dir, "sub.png"), 0o755)

	paths, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}

	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png")}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d]: got %s, want %s", i, paths[i], want[i])
		}
	}

	if _, err := ListImages(filepath.Join(dir, "missing")); err == nil {
		t.Error("ListImages should fail for a missing directory")
	}
}

func TestLoadImageInfo(t *testing.T) {
	dir := t.TempDir()
	path := createTestImage(t, dir, "info.png", 64, 32, color.White)

	info, err := LoadImageInfo(NewImageCache(), path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 64 || info.Height != 32 {
		t.Errorf("dimensions: got %dx%d, want 64x32", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %q, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes: got %d, want > 0", info.FileSizeBytes)
	}

	grayPath := filepath.Join(dir, "gray.png")
	if err := imaging.Save(image.NewGray(image.Rect(0, 0, 8, 8)), grayPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err = LoadImageInfo(NewImageCache(), grayPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if !info.Grayscale {
		t.Error("single-channel PNG should report Grayscale")
	}
}
