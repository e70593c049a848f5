package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func presetProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"default", "high_sensitivity", "high_precision"},
		"description": "Detector preset. Omit to use the server configuration.",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image access
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG. Use it to inspect a reported plate box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the output (default: 1.0)",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Plate pipeline
		{
			Name:        "plate_detect",
			Description: "Find licence plate candidates using binarization, connected components, geometric checks and row transition counts. Returns boxes in image coordinates with a confidence in [0,1].",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"preset": presetProperty(),
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a copy of the image with plates outlined (default: false)",
						"default":     false,
					},
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach the binary plate crops as base64 PNG (default: false)",
						"default":     false,
					},
					"include_candidates": map[string]interface{}{
						"type":        "boolean",
						"description": "List every labelled component with the stage that accepted or rejected it (default: false)",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_extract_digits",
			Description: "Detect plates, then split one plate into character regions ordered left to right. Characters are not recognized.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"preset": presetProperty(),
					"plate_index": map[string]interface{}{
						"type":        "integer",
						"description": "Which detected plate to segment. Defaults to the most confident one.",
					},
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach each digit as base64 PNG (default: false)",
						"default":     false,
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Also write each digit image into this directory",
					},
					"prefix": map[string]interface{}{
						"type":        "string",
						"description": "File name prefix for written digits (default: digit)",
						"default":     "digit",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_binarize",
			Description: "Return the binary image the detector works on. Useful for tuning thresholds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"fixed", "adaptive", "otsu"},
						"description": "Thresholding mode. Defaults to the server configuration.",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Global threshold for fixed mode (0-255)",
						"minimum":     0,
						"maximum":     255,
					},
					"block_size": map[string]interface{}{
						"type":        "integer",
						"description": "Neighbourhood size for adaptive mode",
					},
					"c": map[string]interface{}{
						"type":        "number",
						"description": "Constant subtracted from the neighbourhood mean in adaptive mode",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_presets",
			Description: "List the detector presets and their thresholds.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
