package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"gabor_extract",
		"gabor_kernels",
		"features_inspect",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want object", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required property %s is not defined", name)
				}
			}
		})
	}
}

func TestToolDefinitions_ExtractArguments(t *testing.T) {
	var extract Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "gabor_extract" {
			extract = tool
		}
	}

	props := extract.InputSchema["properties"].(map[string]interface{})
	for _, name := range []string{
		"input", "output", "orientations", "kernel_size", "sigma", "theta",
		"lambda", "gamma", "window_size", "points_per_row", "border",
	} {
		if _, ok := props[name]; !ok {
			t.Errorf("gabor_extract is missing property %s", name)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	tools, ok := result["tools"].([]Tool)
	if !ok || len(tools) == 0 {
		t.Errorf("tools: got %v", result["tools"])
	}
}
