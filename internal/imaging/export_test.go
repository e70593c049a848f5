package imaging

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"JPG", FormatJPEG, false},
		{"jpeg", FormatJPEG, false},
		{".webp", FormatWebP, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	if FormatJPEG.Ext() != ".jpg" || FormatPNG.Ext() != ".png" || FormatWebP.Ext() != ".webp" {
		t.Errorf("unexpected extensions: %s %s %s", FormatJPEG.Ext(), FormatPNG.Ext(), FormatWebP.Ext())
	}
}

func TestSaveAndReopen(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray(image.Rect(0, 0, 30, 12))
	for i := range src.Pix {
		if i%2 == 0 {
			src.Pix[i] = 255
		}
	}

	tests := []struct {
		name string
		opts SaveOptions
	}{
		{"png", SaveOptions{Format: FormatPNG}},
		{"jpeg", SaveOptions{Format: FormatJPEG, Quality: 80}},
		{"webp lossless", SaveOptions{Format: FormatWebP, Lossless: true}},
		{"webp lossy", SaveOptions{Format: FormatWebP, Quality: 75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", tt.name+tt.opts.Format.Ext())
			if err := Save(src, path, tt.opts); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			img, err := Open(path)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 12 {
				t.Errorf("got %v, want 30x12", img.Bounds())
			}
		})
	}
}

func TestSave_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	err := Save(solidImage(4, 4, color.White), path, SaveOptions{Format: "gif"})
	if err == nil {
		t.Fatal("Save should fail for an unsupported format")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed Save should not leave a file behind")
	}
}

func TestEncode_DefaultsToPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, solidImage(4, 4, color.White), SaveOptions{}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("empty format should encode PNG")
	}
}

func TestEncodeBase64(t *testing.T) {
	result, err := EncodeBase64(solidImage(7, 3, color.Black))
	if err != nil {
		t.Fatalf("EncodeBase64 failed: %v", err)
	}
	if result.Width != 7 || result.Height != 3 || result.ImageBase64 == "" {
		t.Errorf("unexpected result %+v", result)
	}
}
