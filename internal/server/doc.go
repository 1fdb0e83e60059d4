// Package server implements an MCP (Model Context Protocol) server that exposes
// Gabor feature extraction as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Feature Extraction:
//   - gabor_extract: Run the full pipeline and write a feature file
//   - gabor_kernels: Render the kernel bank as PNG heatmaps
//   - features_inspect: Summarize an existing feature file
//
// Bank and sampling arguments that a call omits fall back to the options the
// server was created with (see NewWithOptions).
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server process, so
// repeated extractions from the same file skip decoding.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
