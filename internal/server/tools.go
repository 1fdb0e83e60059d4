package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// bankProperties describes the optional filter bank and sampling arguments
// shared by gabor_extract and gabor_kernels.
func bankProperties() map[string]interface{} {
	return map[string]interface{}{
		"orientations": map[string]interface{}{
			"type":        "integer",
			"description": "Number of kernel orientations K. Default 8",
			"default":     8,
		},
		"kernel_size": map[string]interface{}{
			"type":        "integer",
			"description": "Odd kernel side length in pixels. Default 15",
			"default":     15,
		},
		"sigma": map[string]interface{}{
			"type":        "number",
			"description": "Standard deviation of the gaussian envelope. Default 4",
			"default":     4.0,
		},
		"theta": map[string]interface{}{
			"type":        "number",
			"description": "Orientation of the first kernel in radians. Default 0",
			"default":     0.0,
		},
		"lambda": map[string]interface{}{
			"type":        "number",
			"description": "Wavelength of the sinusoidal carrier. Default 10",
			"default":     10.0,
		},
		"gamma": map[string]interface{}{
			"type":        "number",
			"description": "Spatial aspect ratio of the envelope. Default 0.5",
			"default":     0.5,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	extractProps := bankProperties()
	extractProps["input"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the source image",
	}
	extractProps["output"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path of the feature artifact to write",
	}
	extractProps["window_size"] = map[string]interface{}{
		"type":        "integer",
		"description": "Side length of the local feature window. Default 16",
		"default":     16,
	}
	extractProps["points_per_row"] = map[string]interface{}{
		"type":        "integer",
		"description": "Number of anchor points per row and column. Default 24",
		"default":     24,
	}
	extractProps["border"] = map[string]interface{}{
		"type":        "string",
		"description": "Border extension used while filtering",
		"enum":        []string{"reflect101", "replicate"},
		"default":     "reflect101",
	}

	kernelProps := bankProperties()
	kernelProps["scale"] = map[string]interface{}{
		"type":        "integer",
		"description": "Integer enlargement factor for the rendered kernels. Default 8",
		"default":     8,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Feature Extraction
		{
			Name:        "gabor_extract",
			Description: "Filter an image with a bank of oriented Gabor kernels, sample local descriptors on a uniform grid and write them to a binary feature file. Returns the descriptor count and dimension.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": extractProps,
				"required":   []string{"input", "output"},
			},
		},
		{
			Name:        "gabor_kernels",
			Description: "Render the Gabor kernel bank as base64-encoded PNG heatmaps (blue negative, red positive) with their orientations.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": kernelProps,
			},
		},
		{
			Name:        "features_inspect",
			Description: "Read a feature file and report its descriptor count, dimension, byte size and value statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the feature file",
					},
				},
				"required": []string{"path"},
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
