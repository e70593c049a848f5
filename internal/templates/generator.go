// Package templates writes segmented character images to disk so they can
// be labelled and used as matching templates later.
//
// Files are named template_<label>_NNNN.<ext> (or template_NNNN.<ext> when
// unlabelled). OrganizeByLabel sorts labelled files into one directory per
// label.
package templates

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sleepydogo/plate-cv/internal/imaging"
	"github.com/sleepydogo/plate-cv/internal/plate"
)

// Generator saves template images with a running sequence number. The
// counter belongs to the Generator, so two generators never share one.
//
// Generator is safe for concurrent use.
type Generator struct {
	dir  string
	opts imaging.SaveOptions

	mu      sync.Mutex
	counter int
}

// NewGenerator creates a generator writing into dir.
func NewGenerator(dir string, opts imaging.SaveOptions) *Generator {
	return &Generator{dir: dir, opts: opts}
}

// Dir returns the output directory.
func (g *Generator) Dir() string {
	return g.dir
}

// Save writes img as the next template and returns its path. label may be
// empty; it must not contain underscores or path separators because
// OrganizeByLabel reads it back from the file name.
func (g *Generator) Save(img image.Image, label string) (string, error) {
	if strings.ContainsAny(label, `_/\`) {
		return "", fmt.Errorf("invalid template label %q", label)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var name string
	if label != "" {
		name = fmt.Sprintf("template_%s_%04d%s", label, g.counter, g.opts.Format.Ext())
	} else {
		name = fmt.Sprintf("template_%04d%s", g.counter, g.opts.Format.Ext())
	}

	path := filepath.Join(g.dir, name)
	if err := imaging.Save(img, path, g.opts); err != nil {
		return "", err
	}
	g.counter++
	return path, nil
}

// SaveDigits saves the image of every digit under label and returns the
// paths in digit order. Digits without an image are skipped.
func (g *Generator) SaveDigits(digits []plate.DigitRegion, label string) ([]string, error) {
	var paths []string
	for _, d := range digits {
		if d.Image == nil {
			continue
		}
		p, err := g.Save(d.Image, label)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Count returns the number of templates saved since creation or the last
// Reset.
func (g *Generator) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// Reset sets the sequence number back to zero. Files saved afterwards may
// overwrite earlier ones.
func (g *Generator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}

// SaveDigitImages writes digits to dir as <prefix>_NNN.<ext>, numbered by
// position, and returns the paths written.
func SaveDigitImages(digits []plate.DigitRegion, dir, prefix string, opts imaging.SaveOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for i, d := range digits {
		if d.Image == nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%03d%s", prefix, i, opts.Format.Ext()))
		if err := imaging.Save(d.Image, path, opts); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// OrganizeByLabel copies every labelled template in sourceDir into
// targetDir/<label>/ and returns the number of files copied. Files that are
// not images or carry no label are ignored.
func OrganizeByLabel(sourceDir, targetDir string) (int, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read template directory: %w", err)
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create target directory: %w", err)
	}

	copied := 0
	for _, e := range entries {
		if e.IsDir() || imaging.FormatFromPath(e.Name()) == "unknown" {
			continue
		}
		label, ok := labelFromName(e.Name())
		if !ok {
			continue
		}

		labelDir := filepath.Join(targetDir, label)
		if err := os.MkdirAll(labelDir, 0755); err != nil {
			return copied, fmt.Errorf("failed to create label directory: %w", err)
		}
		if err := copyFile(filepath.Join(sourceDir, e.Name()), filepath.Join(labelDir, e.Name())); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// labelFromName extracts LABEL from template_LABEL_NNNN.ext.
func labelFromName(name string) (string, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// copyFile copies src to dst and keeps the modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
