// Package server implements an MCP (Model Context Protocol) server for the
// mosaic tools.
//
// The server speaks JSON-RPC 2.0 over a line-oriented stream, one request
// per line, and writes one response per line. It is normally run on
// stdin/stdout by "photo-mosaic serve".
//
// Supported MCP methods:
//   - initialize: protocol handshake
//   - tools/list: enumerate the tools
//   - tools/call: execute a tool
//   - ping: health check
//
// # Tools
//
//   - image_dimensions: width and height of an image
//   - image_mean_color: average color of an image (hex, RGB and L*a*b*)
//   - mosaic_plan: canvas, tile and grid sizes for a photo and a donor directory
//   - mosaic_build: build a mosaic and save it
//
// The mosaic tools start from the settings the server was created with and
// apply the per-call arguments on top.
//
// # Errors
//
// Tool failures are JSON-RPC errors with code -32000 and the error text in
// data. Malformed params use -32602 and unknown methods -32601.
package server
