// Package geometry plans the shape of a mosaic: how large each tile is, how
// many cells the canvas holds and which way the canvas is oriented.
//
// Tile dimensions are always an integer multiple of a small rational aspect
// ratio (for example 3:4 or 16:9) so that the tile grid divides cleanly. The
// ratio is either given explicitly or derived from the median aspect ratio
// of the donor pool.
//
// All functions in this package are pure.
package geometry
