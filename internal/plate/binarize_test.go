package plate

import (
	"errors"
	"image"
	"testing"
)

func TestBinarizeFixedThreshold(t *testing.T) {
	b, err := NewBinarizer(BinarizeConfig{Mode: ModeFixed, Threshold: 150})
	if err != nil {
		t.Fatalf("NewBinarizer failed: %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, 4, 1))
	copy(img.Pix, []uint8{0, 150, 151, 255})

	out, err := b.Binarize(img)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}

	want := []uint8{0, 0, 255, 255}
	for i, v := range want {
		if out.Pix[i] != v {
			t.Errorf("pixel %d: got %d, want %d", i, out.Pix[i], v)
		}
	}
}

func TestBinarizeOutputIsBinary(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}

	modes := []BinarizeConfig{
		{Mode: ModeFixed, Threshold: 150},
		{Mode: ModeAdaptive, BlockSize: 11, C: 2},
		{Mode: ModeOtsu},
	}
	for _, cfg := range modes {
		t.Run(cfg.Mode.String(), func(t *testing.T) {
			b, err := NewBinarizer(cfg)
			if err != nil {
				t.Fatalf("NewBinarizer failed: %v", err)
			}
			out, err := b.Binarize(img)
			if err != nil {
				t.Fatalf("Binarize failed: %v", err)
			}
			if out.Bounds() != img.Bounds() {
				t.Errorf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
			}
			if !isBinary(out) {
				t.Error("output contains values other than 0 and 255")
			}
		})
	}
}

func TestBinarizeFixedIsIdempotent(t *testing.T) {
	b, _ := NewBinarizer(BinarizeConfig{Mode: ModeFixed, Threshold: 150})
	img := createSceneImage()
	fillGray(img, 0, 0, 50, 50, 170)

	once, err := b.Binarize(img)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	twice, err := b.Binarize(once)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}

	for i := range once.Pix {
		if once.Pix[i] != twice.Pix[i] {
			t.Fatalf("pixel %d changed on second pass: %d -> %d", i, once.Pix[i], twice.Pix[i])
		}
	}
}

func TestBinarizeRejectsColorInput(t *testing.T) {
	b, _ := NewBinarizer(BinarizeConfig{Mode: ModeFixed, Threshold: 150})

	_, err := b.Binarize(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got error %v, want ErrInvalidInput", err)
	}
}

func TestBinarizeSubImage(t *testing.T) {
	b, _ := NewBinarizer(BinarizeConfig{Mode: ModeFixed, Threshold: 100})
	img := createGrayImage(20, 20, 0)
	fillGray(img, 10, 10, 5, 5, 200)

	sub := img.SubImage(image.Rect(10, 10, 20, 20)).(*image.Gray)
	out, err := b.Binarize(sub)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("bounds: got %v, want origin-based 10x10", out.Bounds())
	}
	if out.GrayAt(0, 0).Y != Foreground {
		t.Error("top-left of sub-image should be foreground")
	}
	if out.GrayAt(9, 9).Y != Background {
		t.Error("bottom-right of sub-image should be background")
	}
}

func TestNewBinarizerRoundsBlockSizeUp(t *testing.T) {
	b, err := NewBinarizer(BinarizeConfig{Mode: ModeAdaptive, BlockSize: 10, C: 2})
	if err != nil {
		t.Fatalf("NewBinarizer failed: %v", err)
	}
	if got := b.Config().BlockSize; got != 11 {
		t.Errorf("BlockSize: got %d, want 11", got)
	}
}

func TestNewBinarizerInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  BinarizeConfig
	}{
		{"threshold too high", BinarizeConfig{Mode: ModeFixed, Threshold: 256}},
		{"negative threshold", BinarizeConfig{Mode: ModeFixed, Threshold: -1}},
		{"zero block size", BinarizeConfig{Mode: ModeAdaptive, BlockSize: 0}},
		{"unknown mode", BinarizeConfig{Mode: Mode(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBinarizer(tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got error %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestAdaptiveThresholdDarkSpot(t *testing.T) {
	b, _ := NewBinarizer(BinarizeConfig{Mode: ModeAdaptive, BlockSize: 11, C: 2})
	img := createGrayImage(30, 30, 100)
	fillGray(img, 14, 14, 3, 3, 20)

	out, err := b.Binarize(img)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}

	if out.GrayAt(15, 15).Y != Background {
		t.Error("dark spot should be background")
	}
	if out.GrayAt(0, 0).Y != Foreground {
		t.Error("uniform corner should be foreground")
	}
	if out.GrayAt(29, 29).Y != Foreground {
		t.Error("uniform corner should be foreground")
	}
}

func TestOtsuThreshold(t *testing.T) {
	t.Run("bimodal", func(t *testing.T) {
		img := createGrayImage(20, 20, 50)
		fillGray(img, 0, 0, 20, 10, 200)

		th := OtsuThreshold(img)
		if th < 50 || th >= 200 {
			t.Fatalf("threshold %d does not separate 50 from 200", th)
		}

		b, _ := NewBinarizer(BinarizeConfig{Mode: ModeOtsu})
		out, _ := b.Binarize(img)
		if out.GrayAt(0, 0).Y != Foreground || out.GrayAt(0, 19).Y != Background {
			t.Error("Otsu binarization did not split the two halves")
		}
	})

	t.Run("uniform", func(t *testing.T) {
		img := createGrayImage(10, 10, 77)
		if th := OtsuThreshold(img); th != 77 {
			t.Errorf("got %d, want 77", th)
		}

		b, _ := NewBinarizer(BinarizeConfig{Mode: ModeOtsu})
		out, _ := b.Binarize(img)
		for _, v := range out.Pix {
			if v != Background {
				t.Fatal("uniform image should binarize to all background")
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		if th := OtsuThreshold(image.NewGray(image.Rect(0, 0, 0, 0))); th != 0 {
			t.Errorf("got %d, want 0", th)
		}
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"fixed", ModeFixed, false},
		{"Adaptive", ModeAdaptive, false},
		{" otsu ", ModeOtsu, false},
		{"", ModeFixed, false},
		{"sauvola", ModeFixed, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
