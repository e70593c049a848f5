// Package server exposes the plate pipeline as an MCP (Model Context
// Protocol) server.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image access:
//   - image_load: Dimensions, format and file size
//   - image_crop: Extract a rectangular region as base64 PNG
//
// Plate pipeline:
//   - plate_detect: Locate plates, optionally with crops, candidate
//     decisions and an annotated copy
//   - plate_extract_digits: Segment one detected plate into digits
//   - plate_binarize: Show the binary image for a thresholding mode
//   - plate_presets: List detector presets
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process.
//
// # Error Handling
//
// Tool failures are JSON-RPC errors with code -32000 and the Go error in
// data. Malformed tools/call params use -32602.
package server
