// Package server implements an MCP (Model Context Protocol) tool server for
// room stamp extraction.
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
//   - roomstamp_load: Load a drawing and get its metadata
//   - roomstamp_tiles: Tile grid of a drawing or of a given size
//   - roomstamp_crop: Crop a box as base64 PNG
//   - roomstamp_detect: Merged detector output for a drawing
//   - roomstamp_parse_lines: Interpret the lines of one stamp
//   - roomstamp_extract: Full extraction of one drawing, with exports
//
// # Image Caching
//
// Decoded drawings are cached by path for CacheTTL so that inspecting one
// drawing with several tools decodes it once. roomstamp_extract always reads
// the drawing from disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, pipe)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
package server
