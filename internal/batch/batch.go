// Package batch runs plate detection over many images with a bounded worker
// pool and collects the outcome into a JSON report.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sleepydogo/plate-cv/internal/imaging"
	"github.com/sleepydogo/plate-cv/internal/plate"
)

// PlateSummary is one detected plate in the report.
type PlateSummary struct {
	Confidence  float64           `json:"confidence"`
	Position    plate.BoundingBox `json:"position"`
	Transitions float64           `json:"normalized_transitions"`
	Digits      int               `json:"digits,omitempty"`
}

// ImageResult is the report entry for one file.
type ImageResult struct {
	Filename   string `json:"filename"`
	Success    bool   `json:"success"`
	PlateCount int    `json:"plate_count"`

	// ProcessingTime is the detection time in seconds.
	ProcessingTime float64        `json:"processing_time"`
	Plates         []PlateSummary `json:"plates,omitempty"`

	// AnnotatedPath is set when an annotated copy was written.
	AnnotatedPath string `json:"annotated_path,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Report is the outcome of one Run.
type Report struct {
	RunID       string        `json:"run_id"`
	Timestamp   time.Time     `json:"timestamp"`
	TotalImages int           `json:"total_images"`
	Successful  int           `json:"successful"`
	Results     []ImageResult `json:"results"`
	Summary     Summary       `json:"summary"`
}

// WriteJSON writes the report as indented JSON, creating parent
// directories as needed.
func (r *Report) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Runner processes image files concurrently. Localizer and DigitSegmenter
// are shared by all workers.
type Runner struct {
	localizer *plate.Localizer
	segmenter *plate.DigitSegmenter
	workers   int

	// AnnotatedDir, when set, receives result_<name> copies of every image
	// with plates. The localizer must have Annotate enabled.
	AnnotatedDir string

	// SaveOptions is used for annotated copies.
	SaveOptions imaging.SaveOptions

	// Verbose logs one line per image and every candidate decision.
	Verbose bool
}

// NewRunner creates a runner with the given number of workers. segmenter
// may be nil to skip digit counting.
func NewRunner(localizer *plate.Localizer, segmenter *plate.DigitSegmenter, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		localizer:   localizer,
		segmenter:   segmenter,
		workers:     workers,
		SaveOptions: imaging.DefaultSaveOptions(),
	}
}

// RunDir processes every image directly inside dir.
func (r *Runner) RunDir(ctx context.Context, dir string) (*Report, error) {
	paths, err := imaging.ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	return r.Run(ctx, paths)
}

// Run processes paths and returns a report with one result per path, in
// the order given.
//
// Cancellation is checked before each image starts; images already being
// processed finish normally. When ctx is cancelled the partial report is
// returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	results := make([]ImageResult, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for i, p := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[idx] = ImageResult{Filename: filepath.Base(path), Error: err.Error()}
				return
			}
			results[idx] = r.processImage(path)
		}(i, p)
	}
	wg.Wait()

	report := &Report{
		RunID:       uuid.NewString(),
		Timestamp:   time.Now(),
		TotalImages: len(paths),
		Results:     results,
	}
	for _, res := range results {
		if res.Success {
			report.Successful++
		}
	}
	report.Summary = Summarize(results)

	return report, ctx.Err()
}

// processImage loads and analyses one file. Failures end up in the result.
func (r *Runner) processImage(path string) ImageResult {
	name := filepath.Base(path)
	out := ImageResult{Filename: name}

	img, err := imaging.Open(path)
	if err != nil {
		out.Error = err.Error()
		log.Printf("%s: %v", name, err)
		return out
	}

	res := r.localizer.Detect(img)
	out.Success = res.Success
	out.PlateCount = res.PlateCount()
	out.ProcessingTime = res.Elapsed.Seconds()
	out.Error = res.Error

	for i := range res.Plates {
		p := &res.Plates[i]
		summary := PlateSummary{
			Confidence:  p.Confidence,
			Position:    p.Box,
			Transitions: p.NormalizedTransitions,
		}
		if r.segmenter != nil {
			digits, err := r.segmenter.Extract(p)
			if err != nil {
				log.Printf("%s: digit extraction failed: %v", name, err)
			}
			summary.Digits = len(digits)
		}
		out.Plates = append(out.Plates, summary)
	}

	if r.AnnotatedDir != "" && res.Annotated != nil {
		base := name[:len(name)-len(filepath.Ext(name))]
		dst := filepath.Join(r.AnnotatedDir, "result_"+base+r.SaveOptions.Format.Ext())
		if err := imaging.Save(res.Annotated, dst, r.SaveOptions); err != nil {
			log.Printf("%s: %v", name, err)
		} else {
			out.AnnotatedPath = dst
		}
	}

	if r.Verbose {
		for _, d := range res.Candidates {
			log.Printf("%s: candidate %+v stage=%s accepted=%v %s", name, d.Box, d.Stage, d.Accepted, d.Reason)
		}
		log.Printf("%s: %d plates in %v", name, out.PlateCount, res.Elapsed)
	}
	return out
}
