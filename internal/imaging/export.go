package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// ParseFormat accepts png, jpg, jpeg and webp, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Ext returns the file extension, with the leading dot, used for f. The
// empty format is PNG.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case "":
		return ".png"
	}
	return "." + string(f)
}

// MimeType returns the media type of f.
func (f Format) MimeType() string {
	return "image/" + string(f)
}

// SaveOptions controls Encode and Save.
type SaveOptions struct {
	Format Format

	// Quality is used by JPEG and lossy WebP (1-100).
	Quality int

	// Lossless selects lossless WebP. Binary plate and digit images
	// compress well this way.
	Lossless bool
}

// DefaultSaveOptions writes PNG.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Format: FormatPNG, Quality: 90}
}

func (o SaveOptions) quality() int {
	if o.Quality < 1 || o.Quality > 100 {
		return 90
	}
	return o.Quality
}

// Encode writes img to w in the configured format.
func Encode(w io.Writer, img image.Image, opts SaveOptions) error {
	var err error
	switch opts.Format {
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.quality())})
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.quality()))
	case FormatPNG, "":
		err = imaging.Encode(w, img, imaging.PNG)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s image: %w", opts.Format, err)
	}
	return nil
}

// Save writes img to path, creating parent directories as needed.
func Save(img image.Image, path string, opts SaveOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, img, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EncodeBase64 encodes img as base64 PNG.
func EncodeBase64(img image.Image) (*CropResult, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, DefaultSaveOptions()); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &CropResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    FormatPNG.MimeType(),
	}, nil
}
