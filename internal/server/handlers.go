package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/gabor-features/internal/features"
	"github.com/ironsheep/gabor-features/internal/gabor"
	"github.com/ironsheep/gabor-features/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "gabor_extract").
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
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Feature Extraction
	case "gabor_extract":
		return s.handleGaborExtract(args)
	case "gabor_kernels":
		return s.handleGaborKernels(args)
	case "features_inspect":
		return s.handleFeaturesInspect(args)

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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

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

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Feature Extraction Handlers ===

// bankArgs holds the optional filter bank arguments. Zero values select the
// server defaults; theta is a pointer because zero is a meaningful angle.
type bankArgs struct {
	Orientations int      `json:"orientations"`
	KernelSize   int      `json:"kernel_size"`
	Sigma        float64  `json:"sigma"`
	Theta        *float64 `json:"theta"`
	Lambda       float64  `json:"lambda"`
	Gamma        float64  `json:"gamma"`
}

func (a bankArgs) params(defaults gabor.Params) gabor.Params {
	p := defaults
	if a.Orientations != 0 {
		p.Orientations = a.Orientations
	}
	if a.KernelSize != 0 {
		p.KernelSize = a.KernelSize
	}
	if a.Sigma != 0 {
		p.Sigma = a.Sigma
	}
	if a.Theta != nil {
		p.Theta = *a.Theta
	}
	if a.Lambda != 0 {
		p.Lambda = a.Lambda
	}
	if a.Gamma != 0 {
		p.Gamma = a.Gamma
	}
	return p
}

type gaborExtractArgs struct {
	bankArgs
	Input        string `json:"input"`
	Output       string `json:"output"`
	WindowSize   int    `json:"window_size"`
	PointsPerRow int    `json:"points_per_row"`
	Border       string `json:"border"`
}

func (s *Server) handleGaborExtract(args json.RawMessage) (interface{}, error) {
	var a gaborExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Input == "" || a.Output == "" {
		return nil, fmt.Errorf("input and output paths are required")
	}

	opts := s.defaults
	opts.Params = a.params(s.defaults.Params)
	if a.WindowSize != 0 {
		opts.Window = a.WindowSize
	}
	if a.PointsPerRow != 0 {
		opts.PointsPerRow = a.PointsPerRow
	}
	if a.Border != "" {
		border, err := gabor.ParseBorder(a.Border)
		if err != nil {
			return nil, err
		}
		opts.Border = border
	}
	// Heatmap dumps belong to the command line tool only.
	opts.DumpDir = ""

	extractor, err := features.NewExtractor(opts)
	if err != nil {
		return nil, err
	}
	return extractor.ExtractCached(context.Background(), s.cache, a.Input, a.Output)
}

type gaborKernelsArgs struct {
	bankArgs
	Scale int `json:"scale"`
}

// KernelImage is one rendered kernel of a bank.
type KernelImage struct {
	Index int                    `json:"index"`
	Theta float64                `json:"theta"`
	Image *imaging.HeatmapResult `json:"image"`
}

// KernelsResult contains the rendered kernel bank.
type KernelsResult struct {
	Params  gabor.Params  `json:"params"`
	Kernels []KernelImage `json:"kernels"`
}

func (s *Server) handleGaborKernels(args json.RawMessage) (interface{}, error) {
	var a gaborKernelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 8
	}

	p := a.params(s.defaults.Params)
	kernels, err := gabor.Kernels(p)
	if err != nil {
		return nil, err
	}

	result := &KernelsResult{Params: p, Kernels: make([]KernelImage, len(kernels))}
	for i, k := range kernels {
		img, err := imaging.EncodeHeatmap(k.Weights, a.Scale)
		if err != nil {
			return nil, err
		}
		result.Kernels[i] = KernelImage{Index: i, Theta: k.Theta, Image: img}
	}
	return result, nil
}

// InspectResult summarizes a feature artifact.
type InspectResult struct {
	Path      string  `json:"path"`
	Count     int     `json:"count"`
	Dimension int     `json:"dimension"`
	Bytes     int64   `json:"bytes"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
}

func (s *Server) handleFeaturesInspect(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	store, err := features.Load(a.Path)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Path:      a.Path,
		Count:     store.Len(),
		Dimension: store.Dimension(),
		Bytes:     store.Size(),
	}

	values := make([]float64, 0, store.Len()*store.Dimension())
	for _, d := range store.Descriptors() {
		for _, v := range d {
			if !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0) {
				values = append(values, float64(v))
			}
		}
	}
	if len(values) > 0 {
		result.Min = floats.Min(values)
		result.Max = floats.Max(values)
		result.Mean = floats.Sum(values) / float64(len(values))
	}
	return result, nil
}
