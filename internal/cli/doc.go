// Package cli implements the photo-mosaic command line.
//
// The root command reads a source photo and a directory of donor images and
// writes the mosaic; the serve subcommand exposes the same pipeline as an MCP
// server on stdio. Settings come from TOML config files, overridden by flags.
// All logging goes through a charmbracelet/log logger carried in the command
// context, and --verbose switches it to debug level.
package cli
