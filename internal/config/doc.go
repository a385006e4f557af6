// Package config loads mosaic settings from TOML files.
//
// Files are looked up as <location>/<stem>.toml, locations outer and stems
// inner. Each file found is decoded over the values of the previous ones, so
// later files override earlier ones key by key. Keys that do not map to a
// setting are rejected.
package config
