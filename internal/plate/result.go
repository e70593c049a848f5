package plate

import (
	"image"
	"time"
)

// PlateRegion is a candidate that passed every filter.
type PlateRegion struct {
	Box BoundingBox `json:"box"`

	// Confidence is in [0,1]. It ranks plates but never decided whether
	// this one was kept.
	Confidence float64 `json:"confidence"`

	// Transitions is the raw transition sum over the sampled rows.
	Transitions int `json:"transitions"`

	// NormalizedTransitions is Transitions/(Box.Width+1).
	NormalizedTransitions float64 `json:"normalized_transitions"`

	// Image is an owned copy of the binary region.
	Image *image.Gray `json:"-"`

	// Digits is filled in by callers that run a DigitSegmenter.
	Digits []DigitRegion `json:"digits,omitempty"`
}

// IsUsable reports whether the confidence is above one half.
func (p PlateRegion) IsUsable() bool {
	return p.Confidence > 0.5
}

// DigitRegion is one character-sized component inside a plate.
type DigitRegion struct {
	// Box is relative to the margin-cropped plate image.
	Box BoundingBox `json:"box"`

	Image *image.Gray `json:"-"`

	// Index is the left-to-right position, starting at 0.
	Index int `json:"index"`

	// Character is reserved for a recognizer; segmentation leaves it empty.
	Character string `json:"character,omitempty"`
}

// Pipeline stages named in CandidateDecision.Stage.
const (
	StageGeometry    = "geometry"
	StageTransitions = "transitions"
	StageAccepted    = "accepted"
)

// CandidateDecision records what happened to one labelled component.
type CandidateDecision struct {
	Box         BoundingBox `json:"box"`
	Stage       string      `json:"stage"`
	Accepted    bool        `json:"accepted"`
	Reason      string      `json:"reason,omitempty"`
	Transitions int         `json:"transitions,omitempty"`
	Normalized  float64     `json:"normalized,omitempty"`
}

// DetectionResult is the outcome of one Localizer.Detect call.
type DetectionResult struct {
	Source    image.Image `json:"-"`
	Annotated image.Image `json:"-"`

	Plates     []PlateRegion       `json:"plates"`
	Candidates []CandidateDecision `json:"candidates,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

// newDetectionResult builds a result and derives Success from the other
// fields: true only with at least one plate and no error.
func newDetectionResult(src image.Image, plates []PlateRegion, candidates []CandidateDecision, elapsed time.Duration, err error) *DetectionResult {
	if plates == nil {
		plates = []PlateRegion{}
	}
	res := &DetectionResult{
		Source:     src,
		Plates:     plates,
		Candidates: candidates,
		Elapsed:    elapsed,
	}
	if err != nil {
		res.Error = err.Error()
	}
	res.Success = len(res.Plates) > 0 && res.Error == ""
	return res
}

// PlateCount returns the number of plates found.
func (r *DetectionResult) PlateCount() int {
	return len(r.Plates)
}

// BestPlate returns the plate with the highest confidence. Ties go to the
// first one found. ok is false when there are no plates.
func (r *DetectionResult) BestPlate() (best PlateRegion, ok bool) {
	for i, p := range r.Plates {
		if i == 0 || p.Confidence > best.Confidence {
			best = p
			ok = true
		}
	}
	return best, ok
}

// Boxes returns the bounding boxes of all plates in detection order.
func (r *DetectionResult) Boxes() []BoundingBox {
	boxes := make([]BoundingBox, len(r.Plates))
	for i, p := range r.Plates {
		boxes[i] = p.Box
	}
	return boxes
}
