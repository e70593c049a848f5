// Package plate locates licence-plate candidates in a photograph and splits a
// located plate into per-character regions using classical pixel heuristics.
//
// No learned model is involved. A detection run chains a handful of simple,
// individually testable stages whose thresholds are all plain configuration:
//
//  1. Grayscale: colour input is reduced to BT.601 luma.
//  2. Binarizer: fixed, adaptive (neighbourhood mean) or Otsu threshold.
//  3. ComponentAnalyzer: 8-connected labelling in raster order.
//  4. GeometricFilter: aspect ratio and frame-area ratio checks.
//  5. TransitionFilter: horizontal edge density on sampled rows.
//  6. ConfidenceScorer: distance of the edge density from its ideal value.
//
// Localizer runs stages 1-6 and returns a DetectionResult. DigitSegmenter
// takes one PlateRegion from that result, strips blank margins and re-runs
// the component analysis to find the character glyphs, left to right.
//
// # Coordinate System
//
// Coordinates are 0-based with the origin at the top-left corner. Boxes
// returned for plates are relative to the source image; boxes returned for
// digits are relative to the margin-cropped plate image.
//
// # Binary Images
//
// Binary images are *image.Gray values holding only Background (0) and
// Foreground (255). Any nonzero pixel is treated as foreground when
// labelling.
//
// # Thread Safety
//
// Binarizer, ComponentAnalyzer, the filters, Localizer and DigitSegmenter
// hold only configuration and never mutate it after construction. A single
// instance can be shared by many goroutines, each processing its own image.
//
// # Error Handling
//
// Contract violations (a colour image handed to the Binarizer, a region
// without pixels handed to the DigitSegmenter) are returned as errors that
// wrap ErrInvalidInput or ErrMissingImageData. Localizer.Detect never
// returns an error: anything that goes wrong inside the pipeline is reported
// in-band through DetectionResult.Success and DetectionResult.Error.
package plate
