package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sleepydogo/plate-cv/internal/batch"
	"github.com/sleepydogo/plate-cv/internal/config"
	"github.com/sleepydogo/plate-cv/internal/imaging"
	"github.com/sleepydogo/plate-cv/internal/plate"
	"github.com/sleepydogo/plate-cv/internal/server"
	"github.com/sleepydogo/plate-cv/internal/templates"
)

// commonFlags are shared by every command that runs the detector.
type commonFlags struct {
	configPath string
	preset     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default: "+config.GetConfigPath()+" if present)")
	fs.StringVar(&c.preset, "preset", "", "detector preset: default, high_sensitivity or high_precision")
}

// load reads the config file, applies the preset and environment, and
// validates the result.
func (c *commonFlags) load() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(config.GetConfigPath()); err == nil {
			path = config.GetConfigPath()
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if c.preset != "" {
		detector, err := plate.PresetConfig(c.preset)
		if err != nil {
			return nil, err
		}
		cfg.Preset = c.preset
		cfg.Detector = detector
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Debug() {
		log.Printf("plate-cv v%s (built %s, commit %s), preset %s", Version, BuildTime, GitCommit, cfg.Preset)
	}
	return cfg, nil
}

// detectFile opens path and runs loc on it. A pipeline failure is returned
// as an error; finding no plate is not.
func detectFile(loc *plate.Localizer, path string) (*plate.DetectionResult, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	res := loc.Detect(img)
	if res.Error != "" {
		return res, errors.New(res.Error)
	}
	return res, nil
}

func logCandidates(name string, res *plate.DetectionResult) {
	for _, d := range res.Candidates {
		log.Printf("%s: candidate %+v stage=%s accepted=%v %s", name, d.Box, d.Stage, d.Accepted, d.Reason)
	}
}

func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	annotatePath := fs.String("annotate", "", "write a copy of the image with plates outlined to this path")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	verbose := fs.Bool("verbose", false, "log every candidate decision")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("expected one image path, got %d", fs.NArg())
	}
	path := fs.Arg(0)

	cfg, err := common.load()
	if err != nil {
		return err
	}
	cfg.Detector.Annotate = *annotatePath != ""

	loc, err := plate.NewLocalizer(cfg.Detector)
	if err != nil {
		return err
	}
	res, err := detectFile(loc, path)
	if err != nil {
		return err
	}
	if *verbose || cfg.Debug() {
		logCandidates(filepath.Base(path), res)
	}

	if *annotatePath != "" && res.Annotated != nil {
		format, err := imaging.ParseFormat(filepath.Ext(*annotatePath))
		if err != nil {
			return err
		}
		opts, err := cfg.SaveOptions()
		if err != nil {
			return err
		}
		opts.Format = format
		if err := imaging.Save(res.Annotated, *annotatePath, opts); err != nil {
			return err
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("%s: %d plate(s) in %v\n", path, res.PlateCount(), res.Elapsed)
	for i, p := range res.Plates {
		fmt.Printf("  plate %d: x=%d y=%d w=%d h=%d confidence=%.3f transitions=%.1f usable=%v\n",
			i, p.Box.X, p.Box.Y, p.Box.Width, p.Box.Height, p.Confidence, p.NormalizedTransitions, p.IsUsable())
	}
	return nil
}

// segmentFile detects plates in path and segments plate index, or the best
// plate when index is negative.
func segmentFile(cfg *config.Config, path string, index int) ([]plate.DigitRegion, error) {
	loc, err := plate.NewLocalizer(cfg.Detector)
	if err != nil {
		return nil, err
	}
	seg, err := plate.NewDigitSegmenter(cfg.Detector.Digits)
	if err != nil {
		return nil, err
	}

	res, err := detectFile(loc, path)
	if err != nil {
		return nil, err
	}
	if res.PlateCount() == 0 {
		return nil, fmt.Errorf("no plate detected in %s", path)
	}

	p, _ := res.BestPlate()
	if index >= 0 {
		if index >= res.PlateCount() {
			return nil, fmt.Errorf("plate %d out of range (found %d plates)", index, res.PlateCount())
		}
		p = res.Plates[index]
	}
	return seg.Extract(&p)
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	outDir := fs.String("out", "", "output directory (default: output.dir from config)")
	prefix := fs.String("prefix", "", "digit file name prefix (default: output.digit_prefix from config)")
	index := fs.Int("plate", -1, "plate index to segment; -1 picks the most confident")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("expected one image path, got %d", fs.NArg())
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *outDir == "" {
		*outDir = cfg.Output.Dir
	}
	if *prefix == "" {
		*prefix = cfg.Output.DigitPrefix
	}

	digits, err := segmentFile(cfg, fs.Arg(0), *index)
	if err != nil {
		return err
	}
	opts, err := cfg.SaveOptions()
	if err != nil {
		return err
	}
	paths, err := templates.SaveDigitImages(digits, *outDir, *prefix, opts)
	if err != nil {
		return err
	}

	fmt.Printf("%d digit(s) written to %s\n", len(paths), *outDir)
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func runTemplates(args []string) error {
	fs := flag.NewFlagSet("templates", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	outDir := fs.String("out", "", "template directory (default: <output.dir>/templates)")
	label := fs.String("label", "", "label embedded in every template name")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("expected at least one image path")
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *outDir == "" {
		*outDir = filepath.Join(cfg.Output.Dir, "templates")
	}
	opts, err := cfg.SaveOptions()
	if err != nil {
		return err
	}

	gen := templates.NewGenerator(*outDir, opts)
	for _, path := range fs.Args() {
		digits, err := segmentFile(cfg, path, -1)
		if err != nil {
			log.Printf("%s: %v", filepath.Base(path), err)
			continue
		}
		if _, err := gen.SaveDigits(digits, *label); err != nil {
			return err
		}
	}

	fmt.Printf("%d template(s) written to %s\n", gen.Count(), gen.Dir())
	return nil
}

func runOrganize(args []string) error {
	fs := flag.NewFlagSet("organize", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("expected <source dir> <target dir>")
	}
	n, err := templates.OrganizeByLabel(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Printf("%d template(s) organized into %s\n", n, fs.Arg(1))
	return nil
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	workers := fs.Int("workers", 0, "concurrent images (default: batch.workers from config)")
	digits := fs.Bool("digits", false, "count digits on every plate")
	annotatedDir := fs.String("annotated", "", "write annotated copies of images with plates to this directory")
	reportPath := fs.String("report", "", "report path (default: <output.dir>/batch_report.json)")
	verbose := fs.Bool("verbose", false, "log every image and candidate decision")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("expected one directory, got %d", fs.NArg())
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *digits {
		cfg.Batch.ExtractDigits = true
	}
	if *reportPath == "" {
		*reportPath = filepath.Join(cfg.Output.Dir, "batch_report.json")
	}
	cfg.Detector.Annotate = *annotatedDir != ""

	loc, err := plate.NewLocalizer(cfg.Detector)
	if err != nil {
		return err
	}
	var seg *plate.DigitSegmenter
	if cfg.Batch.ExtractDigits {
		if seg, err = plate.NewDigitSegmenter(cfg.Detector.Digits); err != nil {
			return err
		}
	}

	runner := batch.NewRunner(loc, seg, cfg.Batch.Workers)
	runner.AnnotatedDir = *annotatedDir
	runner.Verbose = *verbose || cfg.Debug()
	if runner.SaveOptions, err = cfg.SaveOptions(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, runErr := runner.RunDir(ctx, fs.Arg(0))
	if report == nil {
		return runErr
	}
	if err := report.WriteJSON(*reportPath); err != nil {
		return err
	}

	s := report.Summary
	fmt.Printf("run %s: %d/%d images with plates (%.1f%%), %d plates\n",
		report.RunID, report.Successful, report.TotalImages, s.SuccessRate*100, s.TotalPlates)
	fmt.Printf("  time per image: mean %.3fs, median %.3fs, max %.3fs\n", s.MeanTime, s.MedianTime, s.MaxTime)
	fmt.Printf("  report: %s\n", *reportPath)
	return runErr
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	cfg, err := common.load()
	if err != nil {
		return err
	}
	srv, err := server.New(cfg, Version)
	if err != nil {
		return err
	}
	return srv.Run()
}
