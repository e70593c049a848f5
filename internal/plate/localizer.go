package plate

import (
	"fmt"
	"image"
	"time"
)

// Localizer runs the plate detection pipeline. It holds no per-call state
// and is safe for concurrent use.
type Localizer struct {
	cfg       Config
	binarizer *Binarizer
	analyzer  ComponentAnalyzer
}

// NewLocalizer validates cfg and builds the pipeline stages.
func NewLocalizer(cfg Config) (*Localizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bin, err := NewBinarizer(cfg.Binarize)
	if err != nil {
		return nil, err
	}
	if cfg.Transitions.Measure == "" {
		cfg.Transitions.Measure = MeasureNormalized
	}
	return &Localizer{cfg: cfg, binarizer: bin}, nil
}

// Config returns the configuration the Localizer was built with.
func (l *Localizer) Config() Config {
	return l.cfg
}

// Detect finds plate candidates in img.
//
// Detect never returns nil and never panics: failures inside the pipeline
// come back as a result with Success false and Error set. Elapsed covers
// the whole call.
func (l *Localizer) Detect(img image.Image) (res *DetectionResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = newDetectionResult(img, nil, nil, time.Since(start),
				fmt.Errorf("detection failed: %v", r))
		}
	}()

	if img == nil {
		return newDetectionResult(nil, nil, nil, time.Since(start),
			fmt.Errorf("%w: nil image", ErrInvalidInput))
	}

	plates, decisions, err := l.locate(img)
	if err != nil {
		return newDetectionResult(img, nil, decisions, time.Since(start), err)
	}

	var annotated image.Image
	if l.cfg.Annotate && len(plates) > 0 {
		a, err := Annotate(img, plates, DefaultAnnotateStyle())
		if err != nil {
			return newDetectionResult(img, nil, decisions, time.Since(start), err)
		}
		annotated = a
	}

	res = newDetectionResult(img, plates, decisions, time.Since(start), nil)
	res.Annotated = annotated
	return res
}

// locate runs grayscale conversion, binarization, labelling and both
// filters. Every labelled component gets one CandidateDecision.
func (l *Localizer) locate(img image.Image) ([]PlateRegion, []CandidateDecision, error) {
	gray := denoise(ToGray(img), l.cfg.Preprocess.MedianRadius)

	bin, err := l.binarizer.Binarize(gray)
	if err != nil {
		return nil, nil, fmt.Errorf("binarization: %w", err)
	}
	bin = morph(bin, l.cfg.Preprocess.Morphology, l.cfg.Preprocess.MorphRadius)

	components := l.analyzer.FindComponents(bin)
	totalArea := bin.Bounds().Dx() * bin.Bounds().Dy()

	plates := make([]PlateRegion, 0)
	decisions := make([]CandidateDecision, 0, len(components))
	for _, c := range components {
		if ok, reason := l.cfg.Geometry.Evaluate(c.Box, totalArea); !ok {
			decisions = append(decisions, CandidateDecision{
				Box:    c.Box,
				Stage:  StageGeometry,
				Reason: reason,
			})
			continue
		}

		roi := ExtractROI(bin, c.Box)
		total := l.cfg.Transitions.Count(roi)
		normalized := l.cfg.Transitions.Normalize(total, c.Box.Width)

		if !l.cfg.Transitions.Accept(total, normalized) {
			decisions = append(decisions, CandidateDecision{
				Box:         c.Box,
				Stage:       StageTransitions,
				Reason:      transitionReason(l.cfg.Transitions, total, normalized),
				Transitions: total,
				Normalized:  normalized,
			})
			continue
		}

		plates = append(plates, PlateRegion{
			Box:                   c.Box,
			Confidence:            l.cfg.Confidence.Score(normalized),
			Transitions:           total,
			NormalizedTransitions: normalized,
			Image:                 roi,
		})
		decisions = append(decisions, CandidateDecision{
			Box:         c.Box,
			Stage:       StageAccepted,
			Accepted:    true,
			Transitions: total,
			Normalized:  normalized,
		})
	}

	return plates, decisions, nil
}

func transitionReason(t TransitionFilter, total int, normalized float64) string {
	if t.Measure == MeasureRaw {
		return fmt.Sprintf("raw transitions %d outside %.0f..%.0f", total, t.MinRaw, t.MaxRaw)
	}
	return fmt.Sprintf("normalized transitions %.2f outside %.2f..%.2f",
		normalized, t.MinNormalized, t.MaxNormalized)
}
