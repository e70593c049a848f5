package plate

import (
	"fmt"
	"strings"
)

// Mode selects how the Binarizer picks its threshold.
type Mode int

const (
	// ModeFixed uses a single global threshold.
	ModeFixed Mode = iota
	// ModeAdaptive compares each pixel with the mean of its neighbourhood
	// minus a constant.
	ModeAdaptive
	// ModeOtsu computes the global threshold that maximizes the
	// inter-class variance of the histogram.
	ModeOtsu
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeAdaptive:
		return "adaptive"
	case ModeOtsu:
		return "otsu"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeFixed, ModeAdaptive, ModeOtsu:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("%w: unknown binarization mode %d", ErrInvalidConfig, int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode converts "fixed", "adaptive" or "otsu" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "":
		return ModeFixed, nil
	case "adaptive":
		return ModeAdaptive, nil
	case "otsu":
		return ModeOtsu, nil
	}
	return ModeFixed, fmt.Errorf("%w: unknown binarization mode %q", ErrInvalidConfig, s)
}

// Measure selects which transition value the TransitionFilter validates.
type Measure string

const (
	// MeasureNormalized validates total/(width+1) against the normalized bounds.
	MeasureNormalized Measure = "normalized"
	// MeasureRaw validates the raw transition sum against the raw bounds.
	MeasureRaw Measure = "raw"
)

// MorphOp is a morphological operation applied to the binary image before
// labelling.
type MorphOp string

const (
	MorphNone   MorphOp = "none"
	MorphDilate MorphOp = "dilate"
	MorphErode  MorphOp = "erode"
	MorphOpen   MorphOp = "open"
	MorphClose  MorphOp = "close"
)

// BinarizeConfig configures the Binarizer.
type BinarizeConfig struct {
	Mode Mode `json:"mode"`

	// Threshold is the fixed global threshold (0-255). Pixels strictly above
	// it become foreground.
	Threshold int `json:"threshold"`

	// BlockSize is the side of the adaptive neighbourhood. Even values are
	// rounded up to the next odd value.
	BlockSize int `json:"block_size"`

	// C is subtracted from the neighbourhood mean in adaptive mode.
	C float64 `json:"c"`
}

// PreprocessConfig configures the optional clean-up steps around
// binarization. The zero value disables both.
type PreprocessConfig struct {
	// MedianRadius applies a median filter of this radius to the grayscale
	// image before binarization. 0 disables it.
	MedianRadius float64 `json:"median_radius"`

	// Morphology is applied to the binary image before labelling.
	Morphology MorphOp `json:"morphology"`

	// MorphRadius is the structuring element radius for Morphology.
	MorphRadius float64 `json:"morph_radius"`
}

// Config holds every threshold used by Localizer and DigitSegmenter.
type Config struct {
	Binarize    BinarizeConfig   `json:"binarize"`
	Preprocess  PreprocessConfig `json:"preprocess"`
	Geometry    GeometricFilter  `json:"geometry"`
	Transitions TransitionFilter `json:"transitions"`
	Confidence  ConfidenceScorer `json:"confidence"`
	Digits      DigitConfig      `json:"digits"`

	// Annotate makes Detect attach a copy of the source image with the
	// detected plates outlined.
	Annotate bool `json:"annotate"`
}

// DefaultConfig returns the thresholds tuned for the target camera setup.
func DefaultConfig() Config {
	return Config{
		Binarize: BinarizeConfig{
			Mode:      ModeFixed,
			Threshold: 150,
			BlockSize: 11,
			C:         2,
		},
		Preprocess: PreprocessConfig{
			Morphology:  MorphNone,
			MorphRadius: 1,
		},
		Geometry: GeometricFilter{
			MinAspect:    2.8,
			MaxAspect:    5.0,
			MinAreaRatio: 23,
			MaxAreaRatio: 300,
		},
		Transitions: TransitionFilter{
			Proportions:   []float64{0.25, 0.5, 0.75},
			Measure:       MeasureNormalized,
			MinNormalized: 30,
			MaxNormalized: 90,
			MinRaw:        5000,
			MaxRaw:        10000,
		},
		Confidence: ConfidenceScorer{
			Ideal:  60,
			Spread: 30,
		},
		Digits: DefaultDigitConfig(),
	}
}

// HighSensitivityConfig widens the area and transition bounds so more
// candidates survive. Useful under uneven lighting.
func HighSensitivityConfig() Config {
	cfg := DefaultConfig()
	cfg.Geometry.MaxAreaRatio = 400
	cfg.Transitions.MinNormalized = 25
	cfg.Transitions.MaxNormalized = 100
	return cfg
}

// HighPrecisionConfig narrows the aspect and transition bounds to cut false
// positives.
func HighPrecisionConfig() Config {
	cfg := DefaultConfig()
	cfg.Geometry.MinAspect = 3.0
	cfg.Geometry.MaxAspect = 4.5
	cfg.Transitions.MinNormalized = 40
	cfg.Transitions.MaxNormalized = 80
	return cfg
}

// Presets lists the names accepted by PresetConfig.
var Presets = []string{"default", "high_sensitivity", "high_precision"}

// PresetConfig returns the configuration registered under name.
func PresetConfig(name string) (Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "high_sensitivity":
		return HighSensitivityConfig(), nil
	case "high_precision":
		return HighPrecisionConfig(), nil
	}
	return Config{}, fmt.Errorf("%w: unknown preset %q (want one of %s)",
		ErrInvalidConfig, name, strings.Join(Presets, ", "))
}

// Validate checks every threshold for range and ordering errors.
func (c Config) Validate() error {
	if err := c.Binarize.validate(); err != nil {
		return err
	}
	if err := c.Preprocess.validate(); err != nil {
		return err
	}
	if err := c.Geometry.validate(); err != nil {
		return err
	}
	if err := c.Transitions.validate(); err != nil {
		return err
	}
	return c.Digits.validate()
}

func (b BinarizeConfig) validate() error {
	switch b.Mode {
	case ModeFixed, ModeOtsu:
	case ModeAdaptive:
		if b.BlockSize < 1 {
			return fmt.Errorf("%w: binarize.block_size must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown binarization mode %d", ErrInvalidConfig, int(b.Mode))
	}
	if b.Threshold < 0 || b.Threshold > 255 {
		return fmt.Errorf("%w: binarize.threshold must be between 0 and 255", ErrInvalidConfig)
	}
	return nil
}

func (p PreprocessConfig) validate() error {
	if p.MedianRadius < 0 {
		return fmt.Errorf("%w: preprocess.median_radius must not be negative", ErrInvalidConfig)
	}
	switch p.Morphology {
	case "", MorphNone:
		return nil
	case MorphDilate, MorphErode, MorphOpen, MorphClose:
		if p.MorphRadius <= 0 {
			return fmt.Errorf("%w: preprocess.morph_radius must be positive", ErrInvalidConfig)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown morphology %q", ErrInvalidConfig, p.Morphology)
}

func (g GeometricFilter) validate() error {
	if g.MinAspect < 0 || g.MinAspect > g.MaxAspect {
		return fmt.Errorf("%w: geometry aspect bounds %.2f..%.2f", ErrInvalidConfig, g.MinAspect, g.MaxAspect)
	}
	if g.MinAreaRatio < 0 || g.MinAreaRatio > g.MaxAreaRatio {
		return fmt.Errorf("%w: geometry area-ratio bounds %.2f..%.2f", ErrInvalidConfig, g.MinAreaRatio, g.MaxAreaRatio)
	}
	return nil
}

func (t TransitionFilter) validate() error {
	if len(t.Proportions) == 0 {
		return fmt.Errorf("%w: transitions.proportions cannot be empty", ErrInvalidConfig)
	}
	for _, p := range t.Proportions {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: transition proportion %.3f outside 0..1", ErrInvalidConfig, p)
		}
	}
	switch t.Measure {
	case "", MeasureNormalized, MeasureRaw:
	default:
		return fmt.Errorf("%w: unknown transition measure %q", ErrInvalidConfig, t.Measure)
	}
	if t.MinNormalized > t.MaxNormalized {
		return fmt.Errorf("%w: normalized transition bounds %.2f..%.2f", ErrInvalidConfig, t.MinNormalized, t.MaxNormalized)
	}
	if t.MinRaw > t.MaxRaw {
		return fmt.Errorf("%w: raw transition bounds %.2f..%.2f", ErrInvalidConfig, t.MinRaw, t.MaxRaw)
	}
	return nil
}

func (d DigitConfig) validate() error {
	if d.BinarizeThreshold < 0 || d.BinarizeThreshold > 255 {
		return fmt.Errorf("%w: digits.binarize_threshold must be between 0 and 255", ErrInvalidConfig)
	}
	if d.MarginBottomRows < 0 {
		return fmt.Errorf("%w: digits.margin_bottom_rows must not be negative", ErrInvalidConfig)
	}
	if d.MinAreaDivisor <= 0 || d.MaxAreaDivisor <= 0 {
		return fmt.Errorf("%w: digit area divisors must be positive", ErrInvalidConfig)
	}
	if d.MaxAreaDivisor > d.MinAreaDivisor {
		return fmt.Errorf("%w: digits.max_area_divisor %.2f exceeds min_area_divisor %.2f",
			ErrInvalidConfig, d.MaxAreaDivisor, d.MinAreaDivisor)
	}
	return nil
}
