package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/sleepydogo/plate-cv/internal/imaging"
	"github.com/sleepydogo/plate-cv/internal/plate"
	"github.com/sleepydogo/plate-cv/internal/templates"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_detect", "image_crop").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image access
	case "image_load":
		return s.handleImageLoad(args)
	case "image_crop":
		return s.handleImageCrop(args)

	// Plate pipeline
	case "plate_detect":
		return s.handlePlateDetect(args)
	case "plate_extract_digits":
		return s.handlePlateExtractDigits(args)
	case "plate_binarize":
		return s.handlePlateBinarize(args)
	case "plate_presets":
		return s.handlePlatePresets(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

// === Plate Handlers ===

// localizerFor returns the server's localizer, or a new one when the call
// asks for a preset or an annotation setting the server was not built with.
func (s *Server) localizerFor(preset string, annotate bool) (*plate.Localizer, error) {
	if preset == "" && annotate == s.localizer.Config().Annotate {
		return s.localizer, nil
	}
	cfg := s.localizer.Config()
	if preset != "" {
		var err error
		if cfg, err = plate.PresetConfig(preset); err != nil {
			return nil, err
		}
	}
	cfg.Annotate = annotate
	return plate.NewLocalizer(cfg)
}

type plateInfo struct {
	Index       int                 `json:"index"`
	Box         plate.BoundingBox   `json:"box"`
	Confidence  float64             `json:"confidence"`
	Usable      bool                `json:"usable"`
	Transitions int                 `json:"transitions"`
	Normalized  float64             `json:"normalized_transitions"`
	Image       *imaging.CropResult `json:"image,omitempty"`
}

type plateDetectResult struct {
	Success    bool                      `json:"success"`
	PlateCount int                       `json:"plate_count"`
	ElapsedMS  float64                   `json:"elapsed_ms"`
	Error      string                    `json:"error,omitempty"`
	Plates     []plateInfo               `json:"plates"`
	Candidates []plate.CandidateDecision `json:"candidates,omitempty"`
	Annotated  *imaging.CropResult       `json:"annotated,omitempty"`
}

type plateDetectArgs struct {
	Path              string `json:"path"`
	Preset            string `json:"preset"`
	Annotate          bool   `json:"annotate"`
	IncludeImages     bool   `json:"include_images"`
	IncludeCandidates bool   `json:"include_candidates"`
}

func (s *Server) handlePlateDetect(args json.RawMessage) (interface{}, error) {
	var a plateDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	loc, err := s.localizerFor(a.Preset, a.Annotate)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := loc.Detect(img)
	out := &plateDetectResult{
		Success:    res.Success,
		PlateCount: res.PlateCount(),
		ElapsedMS:  float64(res.Elapsed.Microseconds()) / 1000,
		Error:      res.Error,
		Plates:     make([]plateInfo, 0, len(res.Plates)),
	}
	if a.IncludeCandidates {
		out.Candidates = res.Candidates
	}

	for i, p := range res.Plates {
		info := plateInfo{
			Index:       i,
			Box:         p.Box,
			Confidence:  p.Confidence,
			Usable:      p.IsUsable(),
			Transitions: p.Transitions,
			Normalized:  p.NormalizedTransitions,
		}
		if a.IncludeImages && p.Image != nil {
			if info.Image, err = imaging.EncodeBase64(p.Image); err != nil {
				return nil, err
			}
		}
		out.Plates = append(out.Plates, info)
	}

	if res.Annotated != nil {
		if out.Annotated, err = imaging.EncodeBase64(res.Annotated); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type digitInfo struct {
	Index int                 `json:"index"`
	Box   plate.BoundingBox   `json:"box"`
	Image *imaging.CropResult `json:"image,omitempty"`
}

type plateDigitsResult struct {
	PlateIndex int               `json:"plate_index"`
	Plate      plate.BoundingBox `json:"plate"`
	Confidence float64           `json:"confidence"`
	DigitCount int               `json:"digit_count"`
	Digits     []digitInfo       `json:"digits"`
	Saved      []string          `json:"saved,omitempty"`
}

type plateExtractDigitsArgs struct {
	Path          string `json:"path"`
	Preset        string `json:"preset"`
	PlateIndex    *int   `json:"plate_index"`
	IncludeImages bool   `json:"include_images"`
	OutputDir     string `json:"output_dir"`
	Prefix        string `json:"prefix"`
}

func (s *Server) handlePlateExtractDigits(args json.RawMessage) (interface{}, error) {
	var a plateExtractDigitsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Prefix == "" {
		a.Prefix = s.cfg.Output.DigitPrefix
	}
	loc, err := s.localizerFor(a.Preset, false)
	if err != nil {
		return nil, err
	}
	seg := s.segmenter
	if a.Preset != "" {
		if seg, err = plate.NewDigitSegmenter(loc.Config().Digits); err != nil {
			return nil, err
		}
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := loc.Detect(img)
	if res.Error != "" {
		return nil, fmt.Errorf("detection failed: %s", res.Error)
	}
	if res.PlateCount() == 0 {
		return nil, fmt.Errorf("no plate detected in %s", a.Path)
	}

	index := bestPlateIndex(res)
	if a.PlateIndex != nil {
		index = *a.PlateIndex
		if index < 0 || index >= res.PlateCount() {
			return nil, fmt.Errorf("plate_index %d out of range (found %d plates)", index, res.PlateCount())
		}
	}
	p := res.Plates[index]

	digits, err := seg.Extract(&p)
	if err != nil {
		return nil, err
	}

	out := &plateDigitsResult{
		PlateIndex: index,
		Plate:      p.Box,
		Confidence: p.Confidence,
		DigitCount: len(digits),
		Digits:     make([]digitInfo, 0, len(digits)),
	}
	for _, d := range digits {
		info := digitInfo{Index: d.Index, Box: d.Box}
		if a.IncludeImages {
			if info.Image, err = imaging.EncodeBase64(d.Image); err != nil {
				return nil, err
			}
		}
		out.Digits = append(out.Digits, info)
	}

	if a.OutputDir != "" {
		opts, err := s.cfg.SaveOptions()
		if err != nil {
			return nil, err
		}
		if out.Saved, err = templates.SaveDigitImages(digits, a.OutputDir, a.Prefix, opts); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// bestPlateIndex mirrors DetectionResult.BestPlate but returns the index.
func bestPlateIndex(res *plate.DetectionResult) int {
	best := 0
	for i, p := range res.Plates {
		if p.Confidence > res.Plates[best].Confidence {
			best = i
		}
	}
	return best
}

type plateBinarizeResult struct {
	Mode       string              `json:"mode"`
	Threshold  int                 `json:"threshold"`
	Foreground float64             `json:"foreground_ratio"`
	Image      *imaging.CropResult `json:"image"`
}

type plateBinarizeArgs struct {
	Path      string   `json:"path"`
	Mode      string   `json:"mode"`
	Threshold *int     `json:"threshold"`
	BlockSize int      `json:"block_size"`
	C         *float64 `json:"c"`
}

func (s *Server) handlePlateBinarize(args json.RawMessage) (interface{}, error) {
	var a plateBinarizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg := s.localizer.Config().Binarize
	if a.Mode != "" {
		mode, err := plate.ParseMode(a.Mode)
		if err != nil {
			return nil, err
		}
		cfg.Mode = mode
	}
	if a.Threshold != nil {
		cfg.Threshold = *a.Threshold
	}
	if a.BlockSize != 0 {
		cfg.BlockSize = a.BlockSize
	}
	if a.C != nil {
		cfg.C = *a.C
	}

	bin, err := plate.NewBinarizer(cfg)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	gray := plate.ToGray(img)
	out, err := bin.Binarize(gray)
	if err != nil {
		return nil, err
	}

	threshold := cfg.Threshold
	switch cfg.Mode {
	case plate.ModeOtsu:
		threshold = int(plate.OtsuThreshold(gray))
	case plate.ModeAdaptive:
		threshold = -1
	}

	encoded, err := imaging.EncodeBase64(out)
	if err != nil {
		return nil, err
	}
	return &plateBinarizeResult{
		Mode:       cfg.Mode.String(),
		Threshold:  threshold,
		Foreground: foregroundRatio(out),
		Image:      encoded,
	}, nil
}

func foregroundRatio(bin *image.Gray) float64 {
	if len(bin.Pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range bin.Pix {
		if v == plate.Foreground {
			n++
		}
	}
	return float64(n) / float64(len(bin.Pix))
}

type presetInfo struct {
	Name   string       `json:"name"`
	Config plate.Config `json:"config"`
}

func (s *Server) handlePlatePresets(args json.RawMessage) (interface{}, error) {
	presets := make([]presetInfo, 0, len(plate.Presets))
	for _, name := range plate.Presets {
		cfg, err := plate.PresetConfig(name)
		if err != nil {
			return nil, err
		}
		presets = append(presets, presetInfo{Name: name, Config: cfg})
	}
	return map[string]interface{}{
		"active":  s.cfg.Preset,
		"presets": presets,
	}, nil
}
